package scanner

import (
	"errors"
	"strings"
	"testing"
)

func TestReflectionDetector_Detect(t *testing.T) {
	detector := NewReflectionDetector()

	tests := []struct {
		name           string
		body           string
		probe          string
		wantFound      bool
		wantFormatType string
	}{
		{
			name:           "Raw reflection",
			body:           "Hello xsc_probe_123 World",
			probe:          "xsc_probe_123",
			wantFound:      true,
			wantFormatType: ReflectionRaw,
		},
		{
			name:           "URL encoded reflection",
			body:           "Hello %3Cscript%3E World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: ReflectionURLEncoded,
		},
		{
			name:           "HTML encoded reflection",
			body:           "Hello &lt;script&gt; World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: ReflectionHTMLEncoded,
		},
		{
			name:           "Not found",
			body:           "Hello World",
			probe:          "xsc_probe",
			wantFound:      false,
			wantFormatType: "",
		},
		{
			name:           "Empty probe",
			body:           "Hello World",
			probe:          "",
			wantFound:      false,
			wantFormatType: "",
		},
		{
			name:           "Double encoded",
			body:           "Hello %253Cscript%253E World",
			probe:          "<script>",
			wantFound:      true,
			wantFormatType: ReflectionDoubleEncoded,
		},
		{
			name:           "Alphanumeric probe is never reported encoded",
			body:           "Hello World",
			probe:          "abc123",
			wantFound:      false,
			wantFormatType: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotFound, gotFormat := detector.Detect(tt.body, tt.probe)

			if gotFound != tt.wantFound {
				t.Errorf("Detect() found = %v, want %v", gotFound, tt.wantFound)
			}

			if gotFormat != tt.wantFormatType {
				t.Errorf("Detect() format = %v, want %v", gotFormat, tt.wantFormatType)
			}
		})
	}
}

func TestEvidence(t *testing.T) {
	body := strings.Repeat("a", 100) + "PAYLOAD" + strings.Repeat("b", 100)

	got := evidence(body, "PAYLOAD", 100)
	if got != strings.Repeat("a", 50)+"PAYLOAD"+strings.Repeat("b", 50) {
		t.Errorf("evidence() = %q", got)
	}

	if got := evidence("xPAYLOADy", "PAYLOAD", -1); got != "xPAYLOADy" {
		t.Errorf("evidence() without offset = %q", got)
	}
	if got := evidence("nothing", "PAYLOAD", -1); got != "" {
		t.Errorf("evidence() for a missing payload = %q", got)
	}
}

func TestScanError(t *testing.T) {
	baseErr := ErrRequestFailed
	p := InjectionPoint{Method: "GET", URL: "http://example.com/test", Name: "a"}

	scanErr := NewPointError("send payload", p, "<svg>", baseErr)

	if scanErr.Error() == "" {
		t.Error("Error() should return non-empty string")
	}
	if !strings.Contains(scanErr.Error(), "'a'") {
		t.Errorf("Error() should name the parameter: %s", scanErr.Error())
	}
	if !errors.Is(scanErr, ErrRequestFailed) {
		t.Error("errors.Is should see the cause")
	}
	if scanErr.Payload != "<svg>" {
		t.Errorf("Payload = %v, want %v", scanErr.Payload, "<svg>")
	}

	long := NewScanError("fetch", "http://example.com/"+strings.Repeat("x", 100), ErrRequestFailed)
	if !strings.Contains(long.Error(), "...") {
		t.Errorf("long URLs should be truncated: %s", long.Error())
	}
}

func TestErrorAggregator(t *testing.T) {
	agg := NewErrorAggregator()
	if agg.Combined() != nil || agg.Error() != "" {
		t.Fatal("empty aggregator should report no error")
	}

	agg.Add(nil)
	agg.Add(ErrRequestFailed)
	agg.Add(ErrResponseTooLarge)

	if agg.Count() != 2 {
		t.Errorf("Count() = %d, want 2", agg.Count())
	}
	if !errors.Is(agg.Combined(), ErrResponseTooLarge) {
		t.Error("Combined() should wrap every error")
	}
	if msgs := agg.Messages(); len(msgs) != 2 || msgs[0] != ErrRequestFailed.Error() {
		t.Errorf("Messages() = %v", msgs)
	}
}
