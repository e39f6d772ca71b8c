package departments_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	core "github.com/dalemusser/collegehub/internal/app/dashboard"
	"github.com/dalemusser/collegehub/internal/app/features/departments"
	errorsfeature "github.com/dalemusser/collegehub/internal/app/features/errors"
	coursestore "github.com/dalemusser/collegehub/internal/app/store/courses"
	departmentstore "github.com/dalemusser/collegehub/internal/app/store/departments"
	userstore "github.com/dalemusser/collegehub/internal/app/store/users"
	"github.com/dalemusser/collegehub/internal/app/system/auth"
	"github.com/dalemusser/collegehub/internal/app/system/ratelimit"
	"github.com/dalemusser/collegehub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newHandler(t *testing.T, db *mongo.Database, policy departmentstore.DeletePolicy) *departments.Handler {
	t.Helper()
	logger := zap.NewNop()
	var agg *core.Aggregator
	if db != nil {
		agg = core.New(
			departmentstore.New(db, policy),
			userstore.New(db),
			coursestore.New(db),
			core.Options{Logger: logger},
		)
	} else {
		agg = core.New(nil, nil, nil, core.Options{Logger: logger})
	}
	reg := core.NewRegistry(agg, 10, time.Minute, nil, nil)
	return departments.NewHandler(reg, errorsfeature.NewErrorLogger(logger), logger)
}

func formRequest(target string, form url.Values, user testutil.TestUser) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(req, user)
}

func deleteRequest(id string, confirm string, user testutil.TestUser) *http.Request {
	form := url.Values{}
	if confirm != "" {
		form.Set("confirm", confirm)
	}
	req := formRequest("/"+id+"/delete", form, user)
	return testutil.WithChiURLParam(req, "id", id)
}

type response struct {
	Department *struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"department"`
	State string `json:"state"`
	View  *struct {
		Departments []struct {
			Code string `json:"code"`
		} `json:"departments"`
	} `json:"view"`
	Error         string `json:"error"`
	Message       string `json:"message"`
	Notifications []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Variant     string `json:"variant"`
	} `json:"notifications"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response {
	t.Helper()
	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHandleCreate_Denied(t *testing.T) {
	h := newHandler(t, nil, "")
	form := url.Values{"name": {"Physics"}, "code": {"PHYS"}}

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, formRequest("/", form, testutil.DepartmentAdminUser(primitive.NewObjectID())))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if rec.Header().Get("Location") != "/" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
}

func TestRoutes_RequireSuperAdmin(t *testing.T) {
	sm, err := auth.NewSessionManager("", "collegehub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := departments.Routes(newHandler(t, nil, ""), sm)

	req := formRequest("/", url.Values{"name": {"X"}, "code": {"X"}}, testutil.StudentUser(primitive.NewObjectID()))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want 303", rec.Code)
	}
}

func TestRoutes_RateLimited(t *testing.T) {
	sm, err := auth.NewSessionManager("", "collegehub-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	router := departments.Routes(newHandler(t, nil, ""), sm, ratelimit.New(1, time.Minute).Middleware)
	user := testutil.SuperAdminUser()

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, formRequest("/", url.Values{"name": {"Physics"}}, user))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusBadRequest || codes[1] != http.StatusTooManyRequests {
		t.Errorf("codes = %v, want [400 429]", codes)
	}
}

func TestHandleCreate_Validation(t *testing.T) {
	h := newHandler(t, nil, "")

	tests := []struct {
		name string
		form url.Values
	}{
		{"missing code", url.Values{"name": {"Physics"}}},
		{"missing name", url.Values{"code": {"PHYS"}}},
		{"whitespace only", url.Values{"name": {"   "}, "code": {"\t"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.HandleCreate(rec, formRequest("/", tt.form, testutil.SuperAdminUser()))

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			body := decode(t, rec)
			if body.Error != "validation_failure" {
				t.Errorf("error = %q", body.Error)
			}
			if len(body.Notifications) != 1 || body.Notifications[0].Description != core.MsgNameCodeRequired {
				t.Errorf("notifications = %+v", body.Notifications)
			}
		})
	}
}

func TestHandleCreate_MalformedJSON(t *testing.T) {
	h := newHandler(t, nil, "")
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.SuperAdminUser())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDelete_BadID(t *testing.T) {
	h := newHandler(t, nil, "")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, deleteRequest("nope", "yes", testutil.SuperAdminUser()))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleDelete_RequiresConfirmation(t *testing.T) {
	h := newHandler(t, nil, "")
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, deleteRequest(primitive.NewObjectID().Hex(), "", testutil.SuperAdminUser()))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decode(t, rec)
	if body.Error != "confirmation_required" {
		t.Errorf("error = %q", body.Error)
	}
	if len(body.Notifications) != 0 {
		t.Errorf("unconfirmed delete should not notify, got %+v", body.Notifications)
	}
}

func TestHandleCreate_Form(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newHandler(t, db, departmentstore.PolicyCascade)

	form := url.Values{
		"name":        {"  Physics "},
		"code":        {"PHYS"},
		"description": {`Waves <script>alert(1)</script>and particles`},
	}
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, formRequest("/", form, testutil.SuperAdminUser()))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body.Department == nil || body.Department.Name != "Physics" || body.Department.Code != "PHYS" {
		t.Fatalf("department = %+v", body.Department)
	}
	if strings.Contains(body.Department.Description, "<script>") {
		t.Errorf("description not sanitized: %q", body.Department.Description)
	}
	if body.State != "ready" || body.View == nil || len(body.View.Departments) != 1 {
		t.Errorf("state = %q view = %+v", body.State, body.View)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Title != core.MsgDepartmentCreated {
		t.Errorf("notifications = %+v", body.Notifications)
	}
}

func TestHandleCreate_JSONDuplicateCode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateDepartment(ctx, "Physics", "PHYS")

	h := newHandler(t, db, departmentstore.PolicyCascade)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Physics Two","code":"phys"}`))
	req.Header.Set("Content-Type", "application/json")
	req = testutil.WithUser(req, testutil.SuperAdminUser())

	rec := httptest.NewRecorder()
	h.HandleCreate(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if len(body.Notifications) != 1 || body.Notifications[0].Variant != "destructive" {
		t.Errorf("notifications = %+v", body.Notifications)
	}
	if body.Notifications[0].Description != core.MsgCreateFailed {
		t.Errorf("description = %q", body.Notifications[0].Description)
	}
}

func TestHandleDelete_Cascade(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cs := fixtures.CreateDepartment(ctx, "Computer Science", "CS")
	fixtures.CreateDepartment(ctx, "History", "HIST")
	fixtures.CreateStudent(ctx, "Stu", "s1@test.com", cs.ID)
	fixtures.CreateCourse(ctx, "Intro to Go", cs.ID)

	h := newHandler(t, db, departmentstore.PolicyCascade)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, deleteRequest(cs.ID.Hex(), "yes", testutil.SuperAdminUser()))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body.View == nil || len(body.View.Departments) != 1 || body.View.Departments[0].Code != "HIST" {
		t.Errorf("view = %+v", body.View)
	}
	if len(body.Notifications) != 1 || body.Notifications[0].Title != core.MsgDepartmentDeleted {
		t.Errorf("notifications = %+v", body.Notifications)
	}
}

func TestHandleDelete_RejectNonEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	cs := fixtures.CreateDepartment(ctx, "Computer Science", "CS")
	fixtures.CreateCourse(ctx, "Intro to Go", cs.ID)

	h := newHandler(t, db, departmentstore.PolicyRejectNonEmpty)
	rec := httptest.NewRecorder()
	h.HandleDelete(rec, deleteRequest(cs.ID.Hex(), "yes", testutil.SuperAdminUser()))

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decode(t, rec)
	if body.Error != "mutation_failure" || body.Message != core.MsgDeleteFailed {
		t.Errorf("error = %q message = %q", body.Error, body.Message)
	}
}
