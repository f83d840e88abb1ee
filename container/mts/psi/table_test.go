/*
NAME
  table_test.go

DESCRIPTION
  table_test.go provides testing for table accumulation and installation.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
)

// patSections returns a PAT of version v split one program per section.
func patSections(v byte, progs ...Program) []Section {
	var secs []Section
	for i, p := range progs {
		psi := NewPATPSI(1, v, p)
		psi.SyntaxSection.Section = byte(i)
		psi.SyntaxSection.LastSection = byte(len(progs) - 1)
		secs = append(secs, psi.Bytes())
	}
	return secs
}

func TestAccumulate(t *testing.T) {
	secs := patSections(0, Program{1, 0x100}, Program{2, 0x200}, Program{3, 0x300})

	v := NewVersionedTable()
	for i, s := range []Section{secs[2], secs[0]} {
		if v.Accumulate(s) {
			t.Fatalf("table complete after %d of 3 sections", i+1)
		}
	}
	if !v.Accumulate(secs[1]) {
		t.Fatal("table not complete after all sections")
	}

	got := TablePrograms(v.Next())
	want := []Program{{1, 0x100}, {2, 0x200}, {3, 0x300}}
	if !cmp.Equal(got, want) {
		t.Errorf("did not get expected result.\n Got: %v\n Want: %v\n", got, want)
	}
}

func TestAccumulateVersionChange(t *testing.T) {
	old := patSections(0, Program{1, 0x100}, Program{2, 0x200})
	neu := patSections(1, Program{1, 0x100}, Program{2, 0x200})

	v := NewVersionedTable()
	v.Accumulate(old[0])
	if v.Accumulate(neu[1]) {
		t.Fatal("sections of different versions completed a table")
	}
	if v.Next().Section(0) != nil {
		t.Error("section of superseded version kept")
	}
	if !v.Accumulate(neu[0]) {
		t.Error("table of new version not complete")
	}
}

func TestAccumulateNotCurrent(t *testing.T) {
	psi := NewPATPSI(1, 0, Program{1, 0x100})
	psi.SyntaxSection.CurrentNext = false

	v := NewVersionedTable()
	if v.Accumulate(psi.Bytes()) {
		t.Error("section not yet applicable completed a table")
	}
	if !v.Next().Empty() {
		t.Error("section not yet applicable was accumulated")
	}
}

func TestInstall(t *testing.T) {
	v := NewVersionedTable()
	var calls []struct{ cur, old []Program }
	handle := func(cur, old *Table) {
		c := struct{ cur, old []Program }{cur: TablePrograms(cur)}
		if old != nil {
			c.old = TablePrograms(old)
		}
		calls = append(calls, c)
	}

	install := func(secs []Section) InstallResult {
		for _, s := range secs {
			v.Accumulate(s)
		}
		r, err := v.Install(ValidatePAT, handle)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return r
	}

	first := patSections(0, Program{1, 0x100})
	if r := install(first); r != Installed {
		t.Fatalf("first install: got %v", r)
	}
	if r := install(patSections(0, Program{1, 0x100})); r != Unchanged {
		t.Fatalf("identical install: got %v", r)
	}
	if len(calls) != 1 {
		t.Fatalf("handler called %d times for identical tables", len(calls))
	}
	if calls[0].old != nil {
		t.Errorf("unexpected old table on first install: %v", calls[0].old)
	}

	if r := install(patSections(1, Program{1, 0x200})); r != Installed {
		t.Fatalf("changed install: got %v", r)
	}
	want := struct{ cur, old []Program }{cur: []Program{{1, 0x200}}, old: []Program{{1, 0x100}}}
	if len(calls) != 2 || !cmp.Equal(calls[1], want, cmp.AllowUnexported(want)) {
		t.Errorf("did not get expected result.\n Got: %+v\n Want: %+v\n", calls, want)
	}
	if !v.Next().Empty() {
		t.Error("next table not reset after install")
	}
	if !bytes.Equal(v.Current().Section(0), patSections(1, Program{1, 0x200})[0]) {
		t.Error("current table is not the installed table")
	}
}

func TestInstallRejected(t *testing.T) {
	v := NewVersionedTable()
	for _, s := range patSections(0, Program{1, 0x100}) {
		v.Accumulate(s)
	}
	if _, err := v.Install(ValidatePAT, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Program 1 mapped twice to different PIDs.
	for _, s := range patSections(1, Program{1, 0x100}, Program{1, 0x200}) {
		v.Accumulate(s)
	}
	called := false
	r, err := v.Install(ValidatePAT, func(cur, old *Table) { called = true })
	if r != Rejected || !errors.Is(err, ErrMalformed) {
		t.Errorf("did not get expected result.\n Got: %v, %v\n Want: %v, %v\n", r, err, Rejected, ErrMalformed)
	}
	if called {
		t.Error("handler called for rejected table")
	}
	if v.Current().Version() != 0 {
		t.Error("current table replaced by rejected table")
	}
	if !v.Next().Empty() {
		t.Error("rejected table not discarded")
	}
}
