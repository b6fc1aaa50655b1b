package service

import "time"

// Test hooks for pinning the clock of the time-dependent services.

func (s *PassengerService) SetNow(now func() time.Time) { s.now = now }
func (s *TripService) SetNow(now func() time.Time) { s.now = now }
func (s *ReportService) SetNow(now func() time.Time) { s.now = now }
func (s *AuthService) SetNow(now func() time.Time) { s.now = now }
