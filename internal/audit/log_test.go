package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/strata-dev/strata/internal/types"
)

func TestAppendAndHistory(t *testing.T) {
	p := filepath.Join(t.TempDir(), "reports", "audit.jsonl")
	l := New(p)

	for i, rec := range []RunRecord{
		{RunID: "run-1", Score: 1.0, Recommendation: types.RecAccept},
		{RunID: "run-2", Score: 0.65, Recommendation: types.RecReject},
	} {
		rec.Timestamp = time.Date(2026, 1, 1+i, 0, 0, 0, 0, time.UTC)
		if err := l.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	got, err := l.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("history has %d records, want 2", len(got))
	}
	if got[0].RunID != "run-1" || got[1].RunID != "run-2" {
		t.Fatalf("wrong order: %+v", got)
	}
	if got[1].Recommendation != types.RecReject {
		t.Fatalf("recommendation lost: %+v", got[1])
	}
}

func TestHistorySkipsTrailingGarbage(t *testing.T) {
	p := filepath.Join(t.TempDir(), "audit.jsonl")
	l := New(p)
	if err := l.Append(RunRecord{RunID: "run-1"}); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(p, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{truncated"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := l.History()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].RunID != "run-1" {
		t.Fatalf("intact prefix not returned: %+v", got)
	}
}
