package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	circleModel "github.com/festy23/kurukatsu/internal/circle/model"
	"github.com/festy23/kurukatsu/internal/member/model"
	"github.com/festy23/kurukatsu/internal/member/service"
	"github.com/festy23/kurukatsu/internal/middleware"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) GetRole(ctx context.Context, circleID, userID string) (*model.RoleResponse, error) {
	args := m.Called(ctx, circleID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.RoleResponse), args.Error(1)
}

func (m *mockService) ListMembers(ctx context.Context, circleID, actorID string) (*model.ListMembersResponse, error) {
	args := m.Called(ctx, circleID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ListMembersResponse), args.Error(1)
}

func (m *mockService) ChangeRole(
	ctx context.Context,
	circleID, actorID, targetID string,
	role model.Role,
) (*model.MemberResponse, error) {
	args := m.Called(ctx, circleID, actorID, targetID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.MemberResponse), args.Error(1)
}

func (m *mockService) RemoveMember(ctx context.Context, circleID, actorID, targetID string) error {
	return m.Called(ctx, circleID, actorID, targetID).Error(0)
}

func (m *mockService) Leave(ctx context.Context, circleID, actorID string) error {
	return m.Called(ctx, circleID, actorID).Error(0)
}

func (m *mockService) TransferLeadership(
	ctx context.Context,
	circleID, actorID, nomineeID string,
) (*model.TransferLeadershipResponse, error) {
	args := m.Called(ctx, circleID, actorID, nomineeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TransferLeadershipResponse), args.Error(1)
}

var _ service.Service = (*mockService)(nil)

func setupRouter(svc service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		middleware.SetActor(c, "U1", "")
	})
	h := New(svc, zap.NewNop().Sugar())
	r.GET("/circles/:circle_id/members", h.ListMembers)
	r.GET("/circles/:circle_id/members/:user_id/role", h.GetRole)
	r.PUT("/circles/:circle_id/members/:user_id/role", h.ChangeRole)
	r.DELETE("/circles/:circle_id/members/:user_id", h.RemoveMember)
	r.POST("/circles/:circle_id/leave", h.Leave)
	r.POST("/circles/:circle_id/leadership/transfer", h.TransferLeadership)
	return r
}

func serve(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GetRole(t *testing.T) {
	mockSvc := new(mockService)
	mockSvc.On("GetRole", mock.Anything, "C1", "U2").
		Return(&model.RoleResponse{CircleID: "C1", UserID: "U2", Role: model.RoleAdmin}, nil)
	mockSvc.On("GetRole", mock.Anything, "C1", "U9").Return(nil, model.ErrMemberNotFound)
	router := setupRouter(mockSvc)

	w := serve(router, http.MethodGet, "/circles/C1/members/U2/role", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"circle_id":"C1","user_id":"U2","role":"admin"}`, w.Body.String())

	w = serve(router, http.MethodGet, "/circles/C1/members/U9/role", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListMembers(t *testing.T) {
	mockSvc := new(mockService)
	mockSvc.On("ListMembers", mock.Anything, "C1", "U1").Return(&model.ListMembersResponse{
		CircleID: "C1",
		Members:  []*model.Member{{CircleID: "C1", UserID: "U1", Role: model.RoleLeader}},
	}, nil)

	w := serve(setupRouter(mockSvc), http.MethodGet, "/circles/C1/members", "")
	assert.Equal(t, http.StatusOK, w.Code)

	var resp model.ListMembersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Members, 1)
	assert.Equal(t, model.RoleLeader, resp.Members[0].Role)
}

func TestHandler_ChangeRole(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(mockService)
		mockSvc.On("ChangeRole", mock.Anything, "C1", "U1", "U2", model.RoleAdmin).
			Return(&model.MemberResponse{Member: &model.Member{CircleID: "C1", UserID: "U2", Role: model.RoleAdmin}}, nil)

		w := serve(setupRouter(mockSvc), http.MethodPut, "/circles/C1/members/U2/role", `{"role":"admin"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		mockSvc.AssertExpectations(t)
	})

	t.Run("unknown role rejected by binding", func(t *testing.T) {
		mockSvc := new(mockService)
		w := serve(setupRouter(mockSvc), http.MethodPut, "/circles/C1/members/U2/role", `{"role":"owner"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockSvc.AssertNotCalled(t, "ChangeRole")
	})
}

func TestHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err            error
		expectedStatus int
		expectedCode   string
	}{
		{model.ErrPermissionDenied, http.StatusForbidden, "FORBIDDEN"},
		{model.ErrNotLeader, http.StatusForbidden, "FORBIDDEN"},
		{model.ErrCannotModifyLeader, http.StatusForbidden, "FORBIDDEN"},
		{model.ErrLeaderViaTransferOnly, http.StatusForbidden, "FORBIDDEN"},
		{model.ErrMemberNotFound, http.StatusNotFound, "NOT_FOUND"},
		{circleModel.ErrCircleNotFound, http.StatusNotFound, "NOT_FOUND"},
		{model.ErrLeaderCannotLeave, http.StatusConflict, "LEADER_CANNOT_LEAVE"},
		{model.ErrSelfTarget, http.StatusBadRequest, "INVALID_REQUEST"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			mockSvc := new(mockService)
			mockSvc.On("RemoveMember", mock.Anything, "C1", "U1", "U2").Return(tt.err)
			mockSvc.On("Leave", mock.Anything, "C1", "U1").Return(tt.err)
			mockSvc.On("TransferLeadership", mock.Anything, "C1", "U1", "U2").Return(nil, tt.err)
			router := setupRouter(mockSvc)

			for _, w := range []*httptest.ResponseRecorder{
				serve(router, http.MethodDelete, "/circles/C1/members/U2", ""),
				serve(router, http.MethodPost, "/circles/C1/leave", ""),
				serve(router, http.MethodPost, "/circles/C1/leadership/transfer", `{"nominee_id":"U2"}`),
			} {
				assert.Equal(t, tt.expectedStatus, w.Code)
				var body ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, tt.expectedCode, body.Error.Code)
			}
		})
	}
}

func TestHandler_SuccessStatuses(t *testing.T) {
	mockSvc := new(mockService)
	mockSvc.On("RemoveMember", mock.Anything, "C1", "U1", "U2").Return(nil)
	mockSvc.On("Leave", mock.Anything, "C1", "U1").Return(nil)
	mockSvc.On("TransferLeadership", mock.Anything, "C1", "U1", "U2").
		Return(&model.TransferLeadershipResponse{CircleID: "C1", LeaderID: "U2", FormerLeaderID: "U1"}, nil)
	router := setupRouter(mockSvc)

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodDelete, "/circles/C1/members/U2", "").Code)
	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodPost, "/circles/C1/leave", "").Code)

	w := serve(router, http.MethodPost, "/circles/C1/leadership/transfer", `{"nominee_id":"U2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"circle_id":"C1","leader_id":"U2","former_leader_id":"U1"}`, w.Body.String())

	w = serve(router, http.MethodPost, "/circles/C1/leadership/transfer", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
