package handlers

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"heartbridge/internal/models"
	"heartbridge/internal/repository/memory"
	"heartbridge/internal/security"
	"heartbridge/internal/service"
	"heartbridge/internal/storage"
	"heartbridge/internal/templates"
)

type testSite struct {
	server   *httptest.Server
	services *service.Services
	store    *memory.Store
	csrf     *security.CSRFGenerator
}

func newTestSite(t *testing.T, loginRate int) *testSite {
	t.Helper()
	tmpl, err := templates.Load()
	if err != nil {
		t.Fatalf("templates.Load() error = %v", err)
	}
	avatars, err := storage.NewAvatarStore(t.TempDir(), 1024)
	if err != nil {
		t.Fatalf("NewAvatarStore() error = %v", err)
	}
	limiter := security.NewRateLimiter(loginRate, time.Minute)
	t.Cleanup(limiter.Stop)

	store := memory.New()
	services := service.New(store, service.Options{SessionDuration: time.Hour})
	csrf := security.NewCSRFGenerator("test-secret")

	server := httptest.NewServer(Logging(NewRouter(Dependencies{
		Services:  services,
		Templates: tmpl,
		Avatars:   avatars,
		CSRF:      csrf,
		Limiter:   limiter,
		MaxUpload: 1024,
	})))
	t.Cleanup(server.Close)

	return &testSite{server: server, services: services, store: store, csrf: csrf}
}

// client never follows redirects so tests can assert on them
func (s *testSite) client() *http.Client {
	return &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}}
}

type session struct {
	site   *testSite
	cookie *http.Cookie
}

func (s *testSite) register(t *testing.T, nickname string, role models.Role) *session {
	t.Helper()
	form := url.Values{
		"nickname":         {nickname},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
		"role":             {string(role)},
	}
	resp, err := s.client().PostForm(s.server.URL+"/register", form)
	if err != nil {
		t.Fatalf("POST /register error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("POST /register status = %d, body = %s", resp.StatusCode, body)
	}
	for _, c := range resp.Cookies() {
		if c.Name == security.SessionCookieName && c.Value != "" {
			return &session{site: s, cookie: c}
		}
	}
	t.Fatal("register did not set a session cookie")
	return nil
}

func (sess *session) token(t *testing.T) string {
	t.Helper()
	tok, err := sess.site.csrf.GenerateToken(sess.cookie.Value)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func (sess *session) get(t *testing.T, path string) (*http.Response, string) {
	t.Helper()
	req, _ := http.NewRequest(http.MethodGet, sess.site.server.URL+path, nil)
	if sess.cookie != nil {
		req.AddCookie(sess.cookie)
	}
	return do(t, sess.site, req)
}

// post sends a form; withToken adds the session's CSRF token
func (sess *session) post(t *testing.T, path string, form url.Values, withToken bool) (*http.Response, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if withToken {
		form.Set(csrfFieldName, sess.token(t))
	}
	req, _ := http.NewRequest(http.MethodPost, sess.site.server.URL+path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if sess.cookie != nil {
		req.AddCookie(sess.cookie)
	}
	return do(t, sess.site, req)
}

func do(t *testing.T, site *testSite, req *http.Request) (*http.Response, string) {
	t.Helper()
	resp, err := site.client().Do(req)
	if err != nil {
		t.Fatalf("%s %s error = %v", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestRegisterLoginLogout(t *testing.T) {
	site := newTestSite(t, 100)
	mum := site.register(t, "mum", models.RoleParent)

	resp, body := mum.get(t, "/")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "mum (Parent)") {
		t.Fatalf("GET / status = %d, body missing display name", resp.StatusCode)
	}

	resp, _ = mum.post(t, "/logout", nil, true)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("POST /logout status = %d", resp.StatusCode)
	}
	resp, _ = mum.get(t, "/post/new")
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("after logout GET /post/new = %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	anon := &session{site: site}
	resp, body = anon.post(t, "/login", url.Values{"nickname": {"mum"}, "password": {"wrong"}}, false)
	if resp.StatusCode != http.StatusUnauthorized || !strings.Contains(body, "Invalid nickname or password") {
		t.Errorf("bad login status = %d", resp.StatusCode)
	}
	resp, _ = anon.post(t, "/login", url.Values{"nickname": {"mum"}, "password": {"secret1"}}, false)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("good login status = %d", resp.StatusCode)
	}
}

func TestRegisterErrorsRerenderForm(t *testing.T) {
	site := newTestSite(t, 100)
	site.register(t, "mum", models.RoleParent)
	anon := &session{site: site}

	tests := []struct {
		name       string
		form       url.Values
		wantStatus int
		wantText   string
	}{
		{
			name:       "duplicate",
			form:       url.Values{"nickname": {"mum"}, "password": {"secret1"}, "confirm_password": {"secret1"}, "role": {"child"}},
			wantStatus: http.StatusConflict,
			wantText:   "already taken",
		},
		{
			name:       "mismatch",
			form:       url.Values{"nickname": {"kid"}, "password": {"secret1"}, "confirm_password": {"secret2"}, "role": {"child"}},
			wantStatus: http.StatusBadRequest,
			wantText:   "do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := anon.post(t, "/register", tt.form, false)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(body, tt.wantText) {
				t.Errorf("body missing %q", tt.wantText)
			}
		})
	}
}

func TestRegisterWithAvatar(t *testing.T) {
	site := newTestSite(t, 100)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range map[string]string{"nickname": "kid", "password": "secret1", "confirm_password": "secret1", "role": "child"} {
		_ = mw.WriteField(k, v)
	}
	part, _ := mw.CreateFormFile("avatar", "me.png")
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, site.server.URL+"/register", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, body := do(t, site, req)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("status = %d, body = %s", resp.StatusCode, body)
	}

	avatar, err := site.services.Auth.GetAvatar(context.Background(), "kid")
	if err != nil || !strings.HasSuffix(avatar, ".png") {
		t.Fatalf("GetAvatar() = %q, %v", avatar, err)
	}

	anon := &session{site: site}
	resp, _ = anon.get(t, "/avatars/"+avatar)
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("GET avatar = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestCreatePostRequiresCSRF(t *testing.T) {
	site := newTestSite(t, 100)
	mum := site.register(t, "mum", models.RoleParent)

	resp, _ := mum.post(t, "/post/new", url.Values{"content": {"hello"}}, false)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("without token status = %d, want 403", resp.StatusCode)
	}

	resp, _ = mum.post(t, "/post/new", url.Values{"content": {"hello family"}}, true)
	if resp.StatusCode != http.StatusSeeOther || !strings.HasPrefix(resp.Header.Get("Location"), "/post/") {
		t.Fatalf("with token = %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}

	anon := &session{site: site}
	_, body := anon.get(t, "/")
	if !strings.Contains(body, "hello family") {
		t.Error("post missing from public feed")
	}
	resp, _ = anon.post(t, "/post/new", url.Values{"content": {"sneaky"}}, false)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/login" {
		t.Errorf("anonymous POST /post/new = %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCreatePostRejectsBlockedWords(t *testing.T) {
	site := newTestSite(t, 100)
	site.store.AddBadWords("darn")
	mum := site.register(t, "mum", models.RoleParent)

	resp, body := mum.post(t, "/post/new", url.Values{"content": {"darn it"}}, true)
	if resp.StatusCode != http.StatusBadRequest || !strings.Contains(body, "not allowed: darn") {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestFeedsFilterByRole(t *testing.T) {
	site := newTestSite(t, 100)
	mum := site.register(t, "mum", models.RoleParent)
	kid := site.register(t, "kid", models.RoleChild)
	mum.post(t, "/post/new", url.Values{"content": {"from a parent"}}, true)
	kid.post(t, "/post/new", url.Values{"content": {"from a child"}}, true)

	tests := []struct {
		path    string
		want    string
		notWant string
	}{
		{"/children", "from a child", "from a parent"},
		{"/parents", "from a parent", "from a child"},
		{"/?view=children", "from a child", "from a parent"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, body := mum.get(t, tt.path)
			if !strings.Contains(body, tt.want) || strings.Contains(body, tt.notWant) {
				t.Errorf("GET %s: want %q only", tt.path, tt.want)
			}
		})
	}

	resp, _ := mum.get(t, "/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /nope = %d, want 404", resp.StatusCode)
	}
}

func TestCommentsLikesAndDeletion(t *testing.T) {
	site := newTestSite(t, 100)
	mum := site.register(t, "mum", models.RoleParent)
	kid := site.register(t, "kid", models.RoleChild)

	resp, _ := mum.post(t, "/post/new", url.Values{"content": {"dinner"}}, true)
	postPath := resp.Header.Get("Location")

	resp, _ = kid.post(t, postPath+"/comment", url.Values{"content": {"yum"}}, true)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("comment status = %d", resp.StatusCode)
	}
	resp, _ = kid.post(t, postPath+"/like", url.Values{"next": {"/"}}, true)
	if resp.StatusCode != http.StatusSeeOther || resp.Header.Get("Location") != "/" {
		t.Fatalf("like = %d %s", resp.StatusCode, resp.Header.Get("Location"))
	}
	resp, _ = kid.post(t, postPath+"/like", url.Values{"next": {"//evil.example"}}, true)
	if loc := resp.Header.Get("Location"); loc != postPath {
		t.Errorf("open redirect: Location = %q", loc)
	}
	resp, _ = kid.post(t, postPath+"/like", nil, true)

	_, body := kid.get(t, postPath)
	if !strings.Contains(body, "yum") || !strings.Contains(body, "1 likes") || !strings.Contains(body, "Unlike") {
		t.Errorf("post page missing comment or like state:\n%s", body)
	}

	resp, _ = kid.post(t, postPath+"/delete", nil, true)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("kid deleting mum's post = %d, want 403", resp.StatusCode)
	}
	resp, _ = mum.post(t, postPath+"/delete", nil, true)
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("mum deleting own post = %d", resp.StatusCode)
	}
	resp, _ = mum.get(t, postPath)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("deleted post = %d, want 404", resp.StatusCode)
	}
}

func TestAdminWorkflow(t *testing.T) {
	site := newTestSite(t, 100)
	kid := site.register(t, "kid", models.RoleChild)
	boss := site.register(t, "boss", models.RoleParent)
	if err := site.services.Auth.GrantAdmin(context.Background(), "boss"); err != nil {
		t.Fatalf("GrantAdmin() error = %v", err)
	}

	resp, _ := kid.get(t, "/admin")
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("kid GET /admin = %d, want 403", resp.StatusCode)
	}

	resp, _ = kid.post(t, "/admin-request", nil, true)
	if loc := resp.Header.Get("Location"); loc != "/admin-request?status=submitted" {
		t.Fatalf("first request Location = %q", loc)
	}
	resp, _ = kid.post(t, "/admin-request", nil, true)
	if loc := resp.Header.Get("Location"); loc != "/admin-request?status=exists" {
		t.Fatalf("second request Location = %q", loc)
	}

	resp, body := boss.get(t, "/admin")
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "1</strong> pending requests") {
		t.Fatalf("GET /admin = %d", resp.StatusCode)
	}
	if !strings.Contains(body, "<h2>Users</h2>") || !strings.Contains(body, ">kid</td>") {
		t.Errorf("admin console does not list users")
	}

	pending, err := site.services.Admin.PendingRequests(context.Background(), "boss")
	if err != nil || len(pending) != 1 {
		t.Fatalf("PendingRequests() = %v, %v", pending, err)
	}
	path := "/admin/requests/" + strconv.FormatInt(pending[0].ID, 10)

	resp, _ = kid.post(t, path+"/approve", nil, true)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("kid approving = %d, want 403", resp.StatusCode)
	}
	resp, _ = boss.post(t, path+"/approve", nil, true)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("approve = %d", resp.StatusCode)
	}
	resp, _ = boss.post(t, path+"/reject", nil, true)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("re-decide = %d, want 409", resp.StatusCode)
	}
	resp, _ = boss.post(t, path+"/maybe", nil, true)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("bad decision = %d, want 404", resp.StatusCode)
	}

	resp, _ = kid.get(t, "/admin")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("approved kid GET /admin = %d", resp.StatusCode)
	}
}

func TestLoginRateLimited(t *testing.T) {
	site := newTestSite(t, 2)
	anon := &session{site: site}
	form := url.Values{"nickname": {"x"}, "password": {"y"}}

	for i := 0; i < 2; i++ {
		if resp, _ := anon.post(t, "/login", form, false); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("attempt %d = %d", i+1, resp.StatusCode)
		}
	}
	if resp, _ := anon.post(t, "/login", form, false); resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("third attempt = %d, want 429", resp.StatusCode)
	}
}

func TestLoginRateLimitIgnoresForwardedFor(t *testing.T) {
	site := newTestSite(t, 2)
	form := url.Values{"nickname": {"x"}, "password": {"y"}}

	for i := 0; i < 3; i++ {
		req, _ := http.NewRequest(http.MethodPost, site.server.URL+"/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-For", "203.0.113."+strconv.Itoa(i+1))
		resp, _ := do(t, site, req)
		want := http.StatusUnauthorized
		if i == 2 {
			want = http.StatusTooManyRequests
		}
		if resp.StatusCode != want {
			t.Errorf("attempt %d with fresh X-Forwarded-For = %d, want %d", i+1, resp.StatusCode, want)
		}
	}
}
