package banlist

import "testing"

func TestBanUnban(t *testing.T) {
	l := New()
	if l.IsBanned("alice") {
		t.Fatal("fresh list bans nobody")
	}

	l.Ban("alice", "abuse")
	if !l.IsBanned("alice") {
		t.Fatal("alice should be banned")
	}
	if l.IsBanned("bob") {
		t.Fatal("bob should not be banned")
	}

	entries := l.Entries()
	if len(entries) != 1 || entries[0].Owner != "alice" || entries[0].Reason != "abuse" {
		t.Fatalf("entries = %+v", entries)
	}

	l.Unban("alice")
	if l.IsBanned("alice") {
		t.Fatal("alice should be unbanned")
	}
}
