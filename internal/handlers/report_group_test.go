package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/taskhub-dev/taskhub/db"
	"github.com/taskhub-dev/taskhub/internal/middleware"
	"github.com/taskhub-dev/taskhub/internal/models"
	"github.com/taskhub-dev/taskhub/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectPermission{},
		&models.ReportGroup{},
		&models.Report{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return gdb
}

// performAs invokes handler directly with an authenticated user in context,
// the way AuthMiddleware would leave it.
func performAs(t *testing.T, user models.User, handler gin.HandlerFunc, method, path string, body interface{}, params gin.Params) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(recorder)

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	ctx.Request = httptest.NewRequest(method, path, payload)
	ctx.Request.Header.Set("Content-Type", "application/json")
	ctx.Params = params
	ctx.Set(types.ContextUserKey, middleware.AuthenticatedUser{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	})

	handler(ctx)
	ctx.Writer.WriteHeaderNow()
	return recorder
}

func seedUser(t *testing.T, gdb *gorm.DB, name, email string) models.User {
	t.Helper()

	user := models.User{Name: name, Email: email, PasswordHash: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return user
}

func seedGroupWithProject(t *testing.T, gdb *gorm.DB, project models.Project) models.ReportGroup {
	t.Helper()

	group := models.ReportGroup{Name: "standup", ChatID: "-100123", IntervalHours: 2}
	if err := gdb.Create(&group).Error; err != nil {
		t.Fatalf("seed group: %v", err)
	}
	if err := gdb.Model(&group).Association("Projects").Append(&project); err != nil {
		t.Fatalf("link project: %v", err)
	}
	return group
}

func TestCreateReportGroupRequiresProjectAdmin(t *testing.T) {
	gdb := testDB(t)
	db.DB = gdb

	owner := seedUser(t, gdb, "Mehdi", "owner@example.com")
	outsider := seedUser(t, gdb, "Sara", "outsider@example.com")

	project := models.Project{Name: "proj", OwnerID: owner.ID}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	body := CreateReportGroupRequest{
		Name:          "standup",
		ChatID:        "-100123",
		IntervalHours: 2,
		ProjectIDs:    []uint{project.ID},
	}

	recorder := performAs(t, outsider, CreateReportGroup, http.MethodPost, "/api/report-groups", body, nil)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("outsider create status = %d, want 403", recorder.Code)
	}

	var count int64
	if err := gdb.Model(&models.ReportGroup{}).Count(&count).Error; err != nil {
		t.Fatalf("count groups: %v", err)
	}
	if count != 0 {
		t.Fatalf("group rows = %d, want 0 after a denied create", count)
	}

	recorder = performAs(t, owner, CreateReportGroup, http.MethodPost, "/api/report-groups", body, nil)
	if recorder.Code != http.StatusCreated {
		t.Fatalf("owner create status = %d, want 201, body %s", recorder.Code, recorder.Body.String())
	}
}

func TestListReportGroupsScopedToReadableProjects(t *testing.T) {
	gdb := testDB(t)
	db.DB = gdb

	owner := seedUser(t, gdb, "Mehdi", "owner@example.com")
	outsider := seedUser(t, gdb, "Sara", "outsider@example.com")

	project := models.Project{Name: "proj", OwnerID: owner.ID}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	seedGroupWithProject(t, gdb, project)

	recorder := performAs(t, outsider, ListReportGroups, http.MethodGet, "/api/report-groups", nil, nil)
	if recorder.Code != http.StatusOK {
		t.Fatalf("outsider list status = %d, want 200", recorder.Code)
	}

	var listed []ReportGroupResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("outsider sees %d groups, want 0", len(listed))
	}

	recorder = performAs(t, owner, ListReportGroups, http.MethodGet, "/api/report-groups", nil, nil)
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("owner sees %d groups, want 1", len(listed))
	}

	// A viewer grant makes the group visible too.
	permission := models.ProjectPermission{ProjectID: project.ID, UserID: outsider.ID, Role: string(types.RoleViewer)}
	if err := gdb.Create(&permission).Error; err != nil {
		t.Fatalf("grant viewer: %v", err)
	}

	recorder = performAs(t, outsider, ListReportGroups, http.MethodGet, "/api/report-groups", nil, nil)
	if err := json.Unmarshal(recorder.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("viewer sees %d groups, want 1", len(listed))
	}
}

func TestDeleteReportGroupRequiresProjectAdmin(t *testing.T) {
	gdb := testDB(t)
	db.DB = gdb

	owner := seedUser(t, gdb, "Mehdi", "owner@example.com")
	editor := seedUser(t, gdb, "Sara", "editor@example.com")

	project := models.Project{Name: "proj", OwnerID: owner.ID}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}
	group := seedGroupWithProject(t, gdb, project)

	permission := models.ProjectPermission{ProjectID: project.ID, UserID: editor.ID, Role: string(types.RoleEditor)}
	if err := gdb.Create(&permission).Error; err != nil {
		t.Fatalf("grant editor: %v", err)
	}

	params := gin.Params{{Key: "group_id", Value: "1"}}

	recorder := performAs(t, editor, DeleteReportGroup, http.MethodDelete, "/api/report-groups/1", nil, params)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("editor delete status = %d, want 403", recorder.Code)
	}

	var survivor models.ReportGroup
	if err := gdb.First(&survivor, group.ID).Error; err != nil {
		t.Fatalf("group should survive a denied delete: %v", err)
	}

	recorder = performAs(t, owner, DeleteReportGroup, http.MethodDelete, "/api/report-groups/1", nil, params)
	if recorder.Code != http.StatusNoContent {
		t.Fatalf("owner delete status = %d, want 204", recorder.Code)
	}

	err := gdb.First(&survivor, group.ID).Error
	if err == nil {
		t.Fatal("group should be gone after the owner's delete")
	}
}

func TestDeleteMissingReportGroupIsNotFound(t *testing.T) {
	gdb := testDB(t)
	db.DB = gdb

	owner := seedUser(t, gdb, "Mehdi", "owner@example.com")

	params := gin.Params{{Key: "group_id", Value: "99"}}

	recorder := performAs(t, owner, DeleteReportGroup, http.MethodDelete, "/api/report-groups/99", nil, params)
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", recorder.Code)
	}
}
