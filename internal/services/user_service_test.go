package services

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ofertalia/internal/authz"
	"ofertalia/internal/models"
)

func segRef(s models.Segment) *models.Segment { return &s }

func TestValidateRoleSegment(t *testing.T) {
	cases := []struct {
		name string
		user models.User
		ok   bool
	}{
		{"gestor with segment and capacity", models.User{RoleID: authz.RoleComercial, Segment: segRef(models.SegmentEstrategic), MaxActiveLeads: 10}, true},
		{"gestor without segment", models.User{RoleID: authz.RoleComercial, MaxActiveLeads: 10}, false},
		{"gestor with crm segment", models.User{RoleID: authz.RoleComercial, Segment: segRef(models.SegmentCRM), MaxActiveLeads: 10}, false},
		{"gestor without capacity", models.User{RoleID: authz.RoleComercial, Segment: segRef(models.SegmentEstandard)}, false},
		{"crm with crm segment", models.User{RoleID: authz.RoleCRM, Segment: segRef(models.SegmentCRM)}, true},
		{"crm without segment", models.User{RoleID: authz.RoleCRM}, true},
		{"crm with commercial segment", models.User{RoleID: authz.RoleCRM, Segment: segRef(models.SegmentEnterprise)}, false},
		{"crm with capacity", models.User{RoleID: authz.RoleCRM, Segment: segRef(models.SegmentCRM), MaxActiveLeads: 5}, false},
		{"admin needs neither", models.User{RoleID: authz.RoleAdmin}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateRoleSegment(&tc.user)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, IsCode(err, CodeValidation))
			}
		})
	}
}

func TestCreateWithPassword(t *testing.T) {
	repo := new(MockUserRepository)
	auth := NewAuthService("test-secret", 60)
	svc := NewUserService(repo, auth)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	user := &models.User{
		Name:           "Anna Puig",
		Email:          "anna@ofertalia.example",
		RoleID:         authz.RoleComercial,
		Segment:        segRef(models.SegmentEstandard),
		MaxActiveLeads: 10,
	}
	require.NoError(t, svc.CreateWithPassword(context.Background(), user, "molt-secreta"))

	assert.True(t, user.IsActive)
	assert.NotEqual(t, "molt-secreta", user.PasswordHash)
	assert.True(t, auth.CheckPassword(user.PasswordHash, "molt-secreta"))
	assert.False(t, auth.CheckPassword(user.PasswordHash, "una-altra"))
}

func TestCreateWithPasswordValidation(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, NewAuthService("test-secret", 60))
	ctx := context.Background()

	err := svc.CreateWithPassword(ctx, &models.User{Email: "anna@ofertalia.example"}, "")
	assert.True(t, IsCode(err, CodeValidation))

	err = svc.CreateWithPassword(ctx, &models.User{Email: "no-email"}, "secreta")
	assert.True(t, IsCode(err, CodeValidation))

	repo.AssertNotCalled(t, "Create")
}

func TestIssueTokenRoundTrip(t *testing.T) {
	auth := NewAuthService("test-secret", 60)
	signed, err := auth.IssueToken(&models.User{ID: 7, RoleID: authz.RoleComercial})
	require.NoError(t, err)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(signed, claims, func(*jwt.Token) (any, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, authz.RoleComercial, claims.RoleID)
}

func TestGestorLoadsSpansAllCommercialSegments(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo, NewAuthService("test-secret", 60))

	repo.On("ListGestorLoads", mock.Anything, models.SegmentEstandard).Return([]models.GestorLoad{{GestorID: 1}}, nil)
	repo.On("ListGestorLoads", mock.Anything, models.SegmentEstrategic).Return([]models.GestorLoad{{GestorID: 2}}, nil)
	repo.On("ListGestorLoads", mock.Anything, models.SegmentEnterprise).Return([]models.GestorLoad{}, nil)

	loads, err := svc.GestorLoads(context.Background())
	require.NoError(t, err)
	require.Len(t, loads, 2)
	assert.Equal(t, int64(1), loads[0].GestorID)
	assert.Equal(t, int64(2), loads[1].GestorID)
	repo.AssertExpectations(t)
}
