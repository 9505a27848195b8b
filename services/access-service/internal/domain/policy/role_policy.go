// services/access-service/internal/domain/policy/role_policy.go
package policy

import (
	"github.com/Tanmoy095/InvestHub/services/access-service/internal/domain/account"
)

// CanReviewRequests decides who may list, approve, reject or clear access requests.
// This is the SINGLE SOURCE OF TRUTH for that permission.
func CanReviewRequests(role account.Role) bool {
	return role == account.RoleAdmin
}
