package dto

import "github.com/noah-isme/gema-site-api/internal/models"

// ContributorCreateRequest adds a contributor manually.
type ContributorCreateRequest struct {
	ID                string `json:"id" validate:"omitempty,max=64"`
	Login             string `json:"login" validate:"required,max=39"`
	DisplayName       string `json:"displayName" validate:"omitempty,max=120"`
	AvatarURL         string `json:"avatarUrl" validate:"omitempty,url"`
	ProfileURL        string `json:"profileUrl" validate:"omitempty,url"`
	ContributionCount int    `json:"contributionCount" validate:"gte=0"`
	AccountType       string `json:"accountType" validate:"omitempty,oneof=User Bot"`
	Role              string `json:"role" validate:"omitempty,oneof=maintainer contributor community"`
}

// ContributorRoleUpdateRequest changes a contributor's role.
type ContributorRoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=maintainer contributor community"`
}

// ContributorListResponse lists the roster.
type ContributorListResponse struct {
	Contributors []models.Contributor `json:"contributors"`
	Total        int                  `json:"total"`
}

// ContributorSyncResponse summarises a sync with the remote repository.
type ContributorSyncResponse struct {
	Added   int  `json:"added"`
	Updated int  `json:"updated"`
	Total   int  `json:"total"`
	Cached  bool `json:"cached"`
}
