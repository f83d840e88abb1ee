/*
DESCRIPTION
  services.go provides the directory of services learned from the PAT, PMT
  and SDT.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package monitor

import "sort"

// VersionUnset is the PMT version of a service whose PMT has not been seen.
const VersionUnset = 0xff

// Service describes one program of the transport stream.
type Service struct {
	ID         uint16
	Name       string // Name is empty until an SDT names the service.
	Provider   string
	Type       uint8 // Service type from the service descriptor.
	PMTPID     uint16
	Scrambled  bool
	PMTVersion uint8
}

// Services maps service IDs to services. Services are never removed while
// monitoring.
type Services struct {
	m map[uint16]*Service
}

// NewServices returns an empty directory.
func NewServices() *Services {
	return &Services{m: make(map[uint16]*Service)}
}

// Get returns the service with id, creating it if needed. It returns nil for
// id 0, which is the network information pointer rather than a service.
func (s *Services) Get(id uint16) *Service {
	if id == 0 {
		return nil
	}
	svc, ok := s.m[id]
	if !ok {
		svc = &Service{ID: id, PMTVersion: VersionUnset}
		s.m[id] = svc
	}
	return svc
}

// Lookup returns the service with id if it exists.
func (s *Services) Lookup(id uint16) (*Service, bool) {
	svc, ok := s.m[id]
	return svc, ok
}

// Name returns the name of service id, or "" if unknown.
func (s *Services) Name(id uint16) string {
	if svc, ok := s.m[id]; ok {
		return svc.Name
	}
	return ""
}

// PMTPID returns the PMT PID of service id, or 0 if unknown.
func (s *Services) PMTPID(id uint16) uint16 {
	if svc, ok := s.m[id]; ok {
		return svc.PMTPID
	}
	return 0
}

// PMTVersion returns the PMT version of service id, or VersionUnset.
func (s *Services) PMTVersion(id uint16) uint8 {
	if svc, ok := s.m[id]; ok {
		return svc.PMTVersion
	}
	return VersionUnset
}

// Scrambled reports whether service id is marked as scrambled.
func (s *Services) Scrambled(id uint16) bool {
	if svc, ok := s.m[id]; ok {
		return svc.Scrambled
	}
	return false
}

// Len returns the number of services.
func (s *Services) Len() int { return len(s.m) }

// IDs returns the service IDs in ascending order.
func (s *Services) IDs() []uint16 {
	ids := make([]uint16, 0, len(s.m))
	for id := range s.m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Primary returns the service with the lowest ID, or nil if there are none.
func (s *Services) Primary() *Service {
	ids := s.IDs()
	if len(ids) == 0 {
		return nil
	}
	return s.m[ids[0]]
}

// AnyScrambled reports whether any service is scrambled.
func (s *Services) AnyScrambled() bool {
	for _, svc := range s.m {
		if svc.Scrambled {
			return true
		}
	}
	return false
}

// Clear removes every service.
func (s *Services) Clear() {
	clear(s.m)
}
