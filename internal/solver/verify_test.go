package solver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hpungsan/algenova/internal/oracle"
)

func TestVerify_ToleranceBoundary(t *testing.T) {
	tests := []struct {
		candidate string
		want      bool
	}{
		{"x = 3", true},
		{"x = 3.0000000001", true},
		{"x = 3.001", false},
		{"2.9999999999", true},
	}
	o := oracle.NewEngine()
	for _, tt := range tests {
		t.Run(tt.candidate, func(t *testing.T) {
			recs := Verify(context.Background(), o, "x - 3", "0", "x", []string{tt.candidate}, nil)
			if len(recs) != 1 {
				t.Fatalf("len(records) = %d, want 1", len(recs))
			}
			if recs[0].Error != "" {
				t.Fatalf("record error = %s", recs[0].Error)
			}
			if recs[0].IsCorrect != tt.want {
				t.Errorf("IsCorrect = %v, want %v (left %s)", recs[0].IsCorrect, tt.want, recs[0].LeftSide)
			}
		})
	}
}

func TestVerify_ParameterSamples(t *testing.T) {
	o := oracle.NewEngine()
	recs := Verify(context.Background(), o, "sin(x)", "0.5", "x", []string{"x = asin(0.5) + 2*k*pi"}, nil)
	if len(recs) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(recs))
	}
	for i, r := range recs {
		if r.ParameterSample == nil || *r.ParameterSample != DefaultSamples[i] {
			t.Errorf("records[%d].ParameterSample = %v, want %d", i, r.ParameterSample, DefaultSamples[i])
		}
		if r.Solution != "x = asin(0.5) + 2*k*pi" {
			t.Errorf("records[%d].Solution = %q", i, r.Solution)
		}
		if !r.IsCorrect {
			t.Errorf("records[%d] incorrect: %s vs %s", i, r.LeftSide, r.RightSide)
		}
	}

	custom := Verify(context.Background(), o, "sin(x)", "0.5", "x", []string{"x = asin(0.5) + 2*k*pi"}, []int{-1, 0, 5})
	if len(custom) != 3 {
		t.Errorf("len(records) = %d with three samples, want 3", len(custom))
	}
}

func TestVerify_PiGlyph(t *testing.T) {
	recs := Verify(context.Background(), oracle.NewEngine(), "cos(x)", "-1", "x", []string{"x = π"}, nil)
	if len(recs) != 1 || !recs[0].IsCorrect {
		t.Errorf("records = %+v, want one correct record", recs)
	}
}

func TestVerify_CandidateIsolation(t *testing.T) {
	recs := Verify(context.Background(), oracle.NewEngine(), "x", "2", "x", []string{"x = 1/0", "x = 2"}, nil)
	if len(recs) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(recs))
	}
	if !strings.HasPrefix(recs[0].Error, "Verification error: ") || recs[0].IsCorrect {
		t.Errorf("records[0] = %+v, want an error record", recs[0])
	}
	if recs[1].Error != "" || !recs[1].IsCorrect {
		t.Errorf("records[1] = %+v, want correct", recs[1])
	}
}

func TestVerify_WholeTokenSubstitution(t *testing.T) {
	// exp contains the letter x; only the variable token may be replaced.
	recs := Verify(context.Background(), oracle.NewEngine(), "exp(x)", "1", "x", []string{"x = 0"}, nil)
	if len(recs) != 1 || !recs[0].IsCorrect {
		t.Errorf("records = %+v, want one correct record", recs)
	}
}

func TestAnswer_JSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Answer `json:"a"`
		B Answer `json:"b"`
		C Answer `json:"c"`
	}{Single("5"), List([]string{"x = 4", "x = 6"}), List(nil)})
	if err != nil {
		t.Fatalf("Marshal error = %v", err)
	}
	if string(b) != `{"a":"5","b":["x = 4","x = 6"],"c":[]}` {
		t.Errorf("Marshal = %s", b)
	}

	var back struct {
		A Answer `json:"a"`
		B Answer `json:"b"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if back.A.Multiple || back.A.String() != "5" {
		t.Errorf("A = %+v", back.A)
	}
	if !back.B.Multiple || back.B.String() != "x = 4 or x = 6" {
		t.Errorf("B = %+v", back.B)
	}
}

func TestAnswer_IsSentinel(t *testing.T) {
	if !Single(AnswerEquationFailed).IsSentinel() || !Single(AnswerIntegralFailed).IsSentinel() {
		t.Error("sentinels not recognized")
	}
	if List([]string{AnswerEquationFailed}).IsSentinel() || Single("5").IsSentinel() {
		t.Error("non-sentinel reported as sentinel")
	}
}
