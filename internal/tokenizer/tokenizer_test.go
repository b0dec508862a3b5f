package tokenizer

import (
	"errors"
	"testing"
)

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

type failingCounter struct{}

func (failingCounter) Name() string { return "failing" }

func (failingCounter) CountString(string) (int, error) { return 0, errors.New("boom") }

func TestCountDocument(t *testing.T) {
	testCases := []struct {
		name          string
		counter       Counter
		document      string
		expectTokens  int
		expectCounted bool
		expectError   bool
	}{
		{name: "text", counter: testCounter{}, document: "* Proj\n", expectTokens: 7, expectCounted: true},
		{name: "empty", counter: testCounter{}, document: "", expectTokens: 0, expectCounted: true},
		{name: "invalid_utf8", counter: testCounter{}, document: string([]byte{0xff, 0xfe}), expectCounted: false},
		{name: "nil_counter", counter: nil, document: "x", expectError: true},
		{name: "counter_error", counter: failingCounter{}, document: "x", expectError: true},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			result, err := CountDocument(testCase.counter, testCase.document)
			if testCase.expectError {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CountDocument error: %v", err)
			}
			if result.Counted != testCase.expectCounted || result.Tokens != testCase.expectTokens {
				t.Fatalf("unexpected result %+v", result)
			}
		})
	}
}

func TestIsOpenAIModel(t *testing.T) {
	for model, expected := range map[string]bool{
		"gpt-4o":                 true,
		"text-embedding-3-small": true,
		"claude-3-5-sonnet":      false,
		"llama-3":                false,
	} {
		if isOpenAIModel(model) != expected {
			t.Fatalf("isOpenAIModel(%q) expected %t", model, expected)
		}
	}
}

func TestNewCounterDefault(t *testing.T) {
	counter, model, err := NewCounter("")
	if err != nil {
		t.Skipf("tiktoken encodings unavailable: %v", err)
	}
	if model != DefaultModel {
		t.Fatalf("expected model %s, got %q", DefaultModel, model)
	}
	tokens, err := counter.CountString("hello world")
	if err != nil {
		t.Fatalf("CountString error: %v", err)
	}
	if tokens <= 0 {
		t.Fatalf("expected positive token count, got %d", tokens)
	}
}
