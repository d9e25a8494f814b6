package handler

import (
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/fitsair-platform/service-groupdesk/internal/platform/auth"
)

// Route registration never invokes the services, so nil handlers are enough to
// inspect the route table.
func registeredRoutes(t *testing.T) map[string]bool {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	root := engine.Group("")

	NewGroupRequestHandler(nil).RegisterRoutes(root, jwtManager)
	NewQuotationHandler(nil).RegisterRoutes(root, jwtManager)

	routes := make(map[string]bool)
	for _, r := range engine.Routes() {
		routes[fmt.Sprintf("%s %s", r.Method, r.Path)] = true
	}
	return routes
}

func TestWorkflowActionRoutes(t *testing.T) {
	routes := registeredRoutes(t)

	assert.True(t, routes["PATCH /api/quotations/:id/send-to-agent"])
	assert.False(t, routes["PATCH /api/quotations/:id/send"])
	assert.True(t, routes["PATCH /api/group-requests/:id/send-to-rc"])
}

func TestAssigneeFromRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newContext := func(target string, body string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest("PATCH", target, strings.NewReader(body))
		return c
	}

	t.Run("query parameter", func(t *testing.T) {
		c := newContext("/api/group-requests/1/send-to-rc?assignedRc=rc.silva", "")
		assert.Equal(t, "rc.silva", assigneeFromRequest(c))
	})

	t.Run("query parameter wins over body", func(t *testing.T) {
		c := newContext("/api/group-requests/1/send-to-rc?assignedRc=rc.silva", `{"rc_username":"rc.perera"}`)
		assert.Equal(t, "rc.silva", assigneeFromRequest(c))
	})

	t.Run("body fallback", func(t *testing.T) {
		c := newContext("/api/group-requests/1/send-to-rc", `{"rc_username":"rc.perera"}`)
		assert.Equal(t, "rc.perera", assigneeFromRequest(c))
	})

	t.Run("missing everywhere", func(t *testing.T) {
		c := newContext("/api/group-requests/1/send-to-rc", "")
		assert.Empty(t, assigneeFromRequest(c))
	})
}
