package users

import "golang.org/x/crypto/bcrypt"

// UseMinCost keeps bcrypt fast in tests.
func (s *Service) UseMinCost() {
	s.cost = bcrypt.MinCost
}
