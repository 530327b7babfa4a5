package leaderboard

import (
	"testing"
	"time"
)

func TestRanker_RankChanges(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{EntryID: "e1", UserID: "u1", Points: 120, PreviousRank: 3},
		{EntryID: "e2", UserID: "u2", Points: 150, PreviousRank: 1},
		{EntryID: "e3", UserID: "u3", Points: 90, PreviousRank: 2},
		{EntryID: "e4", UserID: "u4", Points: 100},
	}

	got := NewRanker(TieBreakStable).Rank(entries)
	want := []struct {
		entryID string
		rank    int
		change  Change
	}{
		{entryID: "e2", rank: 1, change: ChangeSame},
		{entryID: "e1", rank: 2, change: ChangeUp},
		{entryID: "e4", rank: 3, change: ChangeNew},
		{entryID: "e3", rank: 4, change: ChangeDown},
	}
	for idx, w := range want {
		if got[idx].EntryID != w.entryID || got[idx].Rank != w.rank || got[idx].Change != w.change {
			t.Fatalf("unexpected standing at %d: got=%+v want=%+v", idx, got[idx], w)
		}
	}
	if entries[0].EntryID != "e1" {
		t.Fatalf("input slice must not be reordered")
	}
}

func TestRanker_Idempotent(t *testing.T) {
	t.Parallel()

	ranker := NewRanker(TieBreakStable)
	first := ranker.Rank([]Entry{
		{EntryID: "a", Points: 10},
		{EntryID: "b", Points: 30},
		{EntryID: "c", Points: 20},
		{EntryID: "d", Points: 20},
	})

	rerun := make([]Entry, 0, len(first))
	for _, item := range first {
		entry := item.Entry
		entry.PreviousRank = item.Rank
		rerun = append(rerun, entry)
	}
	second := ranker.Rank(rerun)
	for idx, item := range second {
		if item.Change != ChangeSame {
			t.Fatalf("expected same change on rerun at %d: got=%s", idx, item.Change)
		}
		if item.EntryID != first[idx].EntryID || item.Rank != first[idx].Rank {
			t.Fatalf("rerun changed order at %d: got=%+v want=%+v", idx, item, first[idx])
		}
	}
}

func TestRanker_TieBreaks(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []Entry{
		{EntryID: "late", UserName: "alice", Points: 50, CreatedAt: base.Add(2 * time.Hour)},
		{EntryID: "early", UserName: "carol", Points: 50, CreatedAt: base},
		{EntryID: "mid", UserName: "bob", Points: 50, CreatedAt: base.Add(time.Hour)},
	}

	cases := []struct {
		tieBreak TieBreak
		want     []string
	}{
		{tieBreak: TieBreakStable, want: []string{"late", "early", "mid"}},
		{tieBreak: TieBreakCreatedAt, want: []string{"early", "mid", "late"}},
		{tieBreak: TieBreakName, want: []string{"late", "mid", "early"}},
	}
	for _, tc := range cases {
		got := NewRanker(tc.tieBreak).Rank(entries)
		for idx, id := range tc.want {
			if got[idx].EntryID != id {
				t.Fatalf("tie break %s: unexpected order at %d got=%s want=%s", tc.tieBreak, idx, got[idx].EntryID, id)
			}
			if got[idx].Rank != idx+1 {
				t.Fatalf("tie break %s: rank must be positional got=%d want=%d", tc.tieBreak, got[idx].Rank, idx+1)
			}
		}
	}
}

func TestPageAndRankFor(t *testing.T) {
	t.Parallel()

	standings := NewRanker(TieBreakStable).Rank([]Entry{
		{EntryID: "a", UserID: "u1", Points: 40},
		{EntryID: "b", UserID: "u2", Points: 30},
		{EntryID: "c", UserID: "u3", Points: 30},
		{EntryID: "d", UserID: "u4", Points: 10},
	})

	page := Page(standings, 1, 2)
	if len(page) != 2 || page[0].EntryID != "b" || page[1].EntryID != "c" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if got := Page(standings, 10, 2); len(got) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(got))
	}
	if got := Page(standings, 0, 0); len(got) != 4 {
		t.Fatalf("expected full page for zero limit, got %d", len(got))
	}

	if got := RankFor(30, standings); got != 2 {
		t.Fatalf("unexpected rank for tied points: got=%d want=2", got)
	}
	if got := RankFor(50, standings); got != 1 {
		t.Fatalf("unexpected rank for top points: got=%d want=1", got)
	}
	if got := RankFor(0, standings); got != 5 {
		t.Fatalf("unexpected rank for bottom points: got=%d want=5", got)
	}

	self, ok := FindUser(standings, "u3")
	if !ok || self.Rank != 3 {
		t.Fatalf("unexpected user standing: %+v ok=%v", self, ok)
	}
}

func TestParseTieBreak(t *testing.T) {
	t.Parallel()

	if got, err := ParseTieBreak(""); err != nil || got != TieBreakStable {
		t.Fatalf("unexpected default tie break: got=%s err=%v", got, err)
	}
	if got, err := ParseTieBreak("Created_At"); err != nil || got != TieBreakCreatedAt {
		t.Fatalf("unexpected tie break: got=%s err=%v", got, err)
	}
	if _, err := ParseTieBreak("random"); err == nil {
		t.Fatalf("expected error for unknown tie break")
	}
}
