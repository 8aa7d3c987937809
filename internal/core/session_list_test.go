package core

import (
	"sync"
	"testing"
)

func TestSessionListClaimIsExclusive(t *testing.T) {
	list := NewSessionList()

	const racers = 8
	sessions := make([]*Session, racers)
	for i := range sessions {
		sessions[i] = NewSession()
		list.Add(sessions[i])
	}

	var wg sync.WaitGroup
	results := make(chan bool, racers)
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			results <- list.Claim(s, "alice")
		}(s)
	}
	wg.Wait()
	close(results)

	claimed := 0
	for ok := range results {
		if ok {
			claimed++
		}
	}
	if claimed != 1 {
		t.Fatalf("exactly one session may claim a name, got %d", claimed)
	}
	if list.Find("alice") == nil {
		t.Fatal("claimed name must be findable")
	}
}

func TestSessionListFindAndRemove(t *testing.T) {
	list := NewSessionList()
	s := NewSession()
	list.Add(s)
	if !list.Claim(s, "bob") {
		t.Fatal("claim on a fresh list must succeed")
	}

	if got := list.Find("bob"); got != s {
		t.Fatal("find returned the wrong session")
	}
	if list.Find("") != nil {
		t.Fatal("empty name must never match")
	}

	list.Remove(s)
	if list.Find("bob") != nil {
		t.Fatal("removed session still findable")
	}
	if got := list.Len(); got != 0 {
		t.Fatalf("len = %d, want 0", got)
	}

	// The freed name is claimable again.
	s2 := NewSession()
	list.Add(s2)
	if !list.Claim(s2, "bob") {
		t.Fatal("name freed by removal must be claimable")
	}
}
