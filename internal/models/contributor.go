package models

import "time"

// Contributor roles.
const (
	ContributorRoleMaintainer  = "maintainer"
	ContributorRoleContributor = "contributor"
	ContributorRoleCommunity   = "community"
)

// Contributor account types.
const (
	AccountTypeUser = "User"
	AccountTypeBot  = "Bot"
)

// Contributor is a member of the public contributor roster.
type Contributor struct {
	ID                  string     `json:"id"`
	Login               string     `json:"login"`
	DisplayName         string     `json:"displayName,omitempty"`
	AvatarURL           string     `json:"avatarUrl"`
	ProfileURL          string     `json:"profileUrl"`
	ContributionCount   int        `json:"contributionCount"`
	AccountType         string     `json:"accountType"`
	Role                string     `json:"role"`
	FirstContributionAt *time.Time `json:"firstContributionAt,omitempty"`
	LastContributionAt  *time.Time `json:"lastContributionAt,omitempty"`
	CommitCount         int        `json:"commitCount"`
	PRCount             int        `json:"prCount"`
	IssueCount          int        `json:"issueCount"`
	Manual              bool       `json:"manual,omitempty"`
}

// IsValidContributorRole reports whether role is an accepted contributor role.
func IsValidContributorRole(role string) bool {
	switch role {
	case ContributorRoleMaintainer, ContributorRoleContributor, ContributorRoleCommunity:
		return true
	default:
		return false
	}
}
