/*
NAME
  table.go

DESCRIPTION
  table.go provides accumulation of multi-section tables and the current/next
  double buffering used to install new table versions.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package psi

import "bytes"

// MaxSections is the number of sections a table can be split over.
const MaxSections = 256

// Table holds the sections of one version of a table indexed by section
// number. All sections held share the table id, table id extension, version
// and last section number.
type Table struct {
	sections [MaxSections]Section
	n        int
}

// Reset empties t.
func (t *Table) Reset() {
	for i := range t.sections {
		t.sections[i] = nil
	}
	t.n = 0
}

// Empty returns true if t holds no sections.
func (t *Table) Empty() bool { return t.n == 0 }

// first returns any section held by t.
func (t *Table) first() Section {
	for _, s := range t.sections {
		if s != nil {
			return s
		}
	}
	return nil
}

// TableID returns the table id of t's sections.
func (t *Table) TableID() uint8 { return t.first().TableID() }

// TableIDExt returns the table id extension of t's sections.
func (t *Table) TableIDExt() uint16 { return t.first().TableIDExt() }

// Version returns the version of t.
func (t *Table) Version() uint8 { return t.first().Version() }

// LastSection returns the last section number of t.
func (t *Table) LastSection() int { return int(t.first().LastNumber()) }

// Section returns section i of t, or nil if it has not been collected.
func (t *Table) Section(i int) Section { return t.sections[i] }

// Complete returns true once sections 0 through the last section number are
// all present.
func (t *Table) Complete() bool {
	if t.Empty() {
		return false
	}
	return t.n == t.LastSection()+1
}

// Sections returns the sections of a complete table in section number order.
func (t *Table) Sections() []Section {
	if !t.Complete() {
		return nil
	}
	return t.sections[:t.LastSection()+1]
}

// Equal returns true if t and o are both complete and byte-identical.
func (t *Table) Equal(o *Table) bool {
	if !t.Complete() || !o.Complete() || t.LastSection() != o.LastSection() {
		return false
	}
	for i := 0; i <= t.LastSection(); i++ {
		if !bytes.Equal(t.sections[i], o.sections[i]) {
			return false
		}
	}
	return true
}

// add attaches s to t. If s does not belong to the same table version as the
// sections already held, t is emptied first.
func (t *Table) add(s Section) {
	if f := t.first(); f != nil {
		if f.TableID() != s.TableID() || f.TableIDExt() != s.TableIDExt() ||
			f.Version() != s.Version() || f.LastNumber() != s.LastNumber() {
			t.Reset()
		}
	}
	if t.sections[s.Number()] == nil {
		t.n++
	}
	t.sections[s.Number()] = s
}

// InstallResult describes the outcome of VersionedTable.Install.
type InstallResult int

// Install results.
const (
	Unchanged InstallResult = iota // Next was identical to current and was discarded.
	Rejected                       // Next failed validation and was discarded.
	Installed                      // Next became current.
)

func (r InstallResult) String() string {
	switch r {
	case Unchanged:
		return "unchanged"
	case Rejected:
		return "rejected"
	case Installed:
		return "installed"
	default:
		return "unknown"
	}
}

// VersionedTable holds the current, authoritative version of a table and the
// next version being accumulated.
type VersionedTable struct {
	current *Table
	next    *Table
}

// NewVersionedTable returns a VersionedTable with nothing installed.
func NewVersionedTable() *VersionedTable {
	return &VersionedTable{current: &Table{}, next: &Table{}}
}

// Current returns the installed table, or nil if none has been installed.
func (v *VersionedTable) Current() *Table {
	if v.current.Empty() {
		return nil
	}
	return v.current
}

// Next returns the table being accumulated.
func (v *VersionedTable) Next() *Table { return v.next }

// Accumulate attaches s to the next table and returns true if that completes
// it. Sections not yet applicable, i.e. with current_next_indicator unset,
// are ignored.
func (v *VersionedTable) Accumulate(s Section) bool {
	if !s.CurrentNext() {
		return false
	}
	v.next.add(s)
	return v.next.Complete()
}

// Install installs the complete next table. If the current table is
// byte-identical to next, next is discarded and Unchanged returned. Otherwise
// next is checked with validate; on failure next is discarded, current is
// kept and Rejected is returned with the validation error. Otherwise next
// becomes current and handle is called with the new table and the table it
// replaced, which is nil on first install. The replaced table must not be
// retained by handle.
func (v *VersionedTable) Install(validate func(*Table) error, handle func(cur, old *Table)) (InstallResult, error) {
	if !v.current.Empty() && v.current.Equal(v.next) {
		v.next.Reset()
		return Unchanged, nil
	}

	if validate != nil {
		if err := validate(v.next); err != nil {
			v.next.Reset()
			return Rejected, err
		}
	}

	old := v.current
	v.current, v.next = v.next, old
	var prev *Table
	if !old.Empty() {
		prev = old
	}
	if handle != nil {
		handle(v.current, prev)
	}
	v.next.Reset()
	return Installed, nil
}
