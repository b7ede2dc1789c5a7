// Package judge defines the contract with the external code-execution
// service. The API hands off code plus test cases and receives per-case
// verdicts; how execution happens is entirely the judge's concern.
package judge

import "context"

// TestCase is one input/output pair handed to the judge.
type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}

// Request describes a judging job for one submission.
type Request struct {
	Language  string     `json:"language"`
	Code      string     `json:"code"`
	TestCases []TestCase `json:"test_cases"`
}

// TestCaseResult is the judge's verdict for one test case.
type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	Passed         bool   `json:"passed"`
	TimeTakenMs    int64  `json:"time_taken_ms"`
	MemoryKB       int64  `json:"memory_kb"`
	Error          string `json:"error,omitempty"`
}

// Judge runs a submission against its test cases and returns one result per
// case, in order.
type Judge interface {
	Run(ctx context.Context, req Request) ([]TestCaseResult, error)
}
