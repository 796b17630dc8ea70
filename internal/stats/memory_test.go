package stats

import (
	"context"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()

	t.Run("absent user yields zero record", func(t *testing.T) {
		s := NewMemoryStore()
		st, err := s.Get(ctx, "nobody")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.LastUpload != 0 || st.Total != 0 || len(st.Files) != 0 {
			t.Errorf("zero record expected, got %+v", st)
		}
	})

	t.Run("record upload merges", func(t *testing.T) {
		s := NewMemoryStore()
		if err := s.RecordUpload(ctx, "u1", 1000, FileEntry{ID: "a", Created: 1000, URL: "u/a"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if err := s.RecordUpload(ctx, "u1", 2500, FileEntry{ID: "b", Created: 2500, URL: "u/b"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		st, _ := s.Get(ctx, "u1")
		if st.LastUpload != 2500 {
			t.Errorf("last_upload = %d, want 2500", st.LastUpload)
		}
		if st.Total != 2 {
			t.Errorf("total = %d, want 2", st.Total)
		}
		if len(st.Files) != 2 || st.Files[0].ID != "a" || st.Files[1].ID != "b" {
			t.Errorf("history = %+v", st.Files)
		}
	})

	t.Run("users are independent", func(t *testing.T) {
		s := NewMemoryStore()
		_ = s.RecordUpload(ctx, "u1", 1000, FileEntry{ID: "a"})
		st, _ := s.Get(ctx, "u2")
		if st.Total != 0 {
			t.Errorf("u2 total = %d, want 0", st.Total)
		}
	})
}
