package main

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed templates
var templatesFS embed.FS

const (
	cookieName  = "access_token"
	defaultPort = "3000"
	defaultAPI  = "http://localhost:8800"
	envWebPort  = "INKWELL_WEB_PORT"
	envAPIURL   = "INKWELL_API_URL"
)

type post struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Img         string    `json:"img"`
	Content     string    `json:"content"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	UID         int       `json:"uid"`
	Date        time.Time `json:"date"`
	Username    string    `json:"username"`
}

func main() {
	port := getEnv(envWebPort, defaultPort)
	apiBase := getEnv(envAPIURL, defaultAPI)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health (no auth, no templates)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	// Public
	r.Get("/", home(apiBase))
	r.Get("/posts/{id}", single(apiBase))
	r.Get("/login", loginForm)
	r.Post("/login", loginSubmit(apiBase))
	r.Get("/register", registerForm)
	r.Post("/register", registerSubmit(apiBase))
	r.Get("/logout", logout)

	// Writing requires a session cookie
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/write", writeForm(apiBase))
		r.Post("/write", writeSubmit(apiBase))
		r.Get("/posts/{id}/edit", editForm(apiBase))
		r.Post("/posts/{id}/edit", editSubmit(apiBase))
		r.Post("/posts/{id}/delete", deletePost(apiBase))
	})

	log.Printf("Web UI running on http://localhost:%s (API: %s)", port, apiBase)
	if err := http.ListenAndServe(":"+port, r); err != nil {
		log.Fatal(err)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// requireAuth redirects to /login when no session cookie is present. The API
// still re-verifies the token on every write, so a stale cookie just bounces
// back to /login after the API answers 401/403.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := r.Cookie(cookieName)
		if err != nil || token.Value == "" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

var tmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

func renderTemplate(w http.ResponseWriter, name string, data interface{}) {
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
	}
}

func home(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path := "/api/posts"
		cat := r.URL.Query().Get("cat")
		if cat != "" {
			path += "?cat=" + cat
		}
		data, status, err := apiDo(r, "GET", apiBase+path, nil)
		if err != nil || status != http.StatusOK {
			http.Error(w, "cannot reach API", http.StatusBadGateway)
			return
		}
		var posts []post
		if err := json.Unmarshal(data, &posts); err != nil {
			http.Error(w, "bad API response", http.StatusBadGateway)
			return
		}
		renderTemplate(w, "home.html", map[string]interface{}{
			"Posts":    posts,
			"Category": cat,
			"LoggedIn": loggedIn(r),
		})
	}
}

func single(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, status, err := apiDo(r, "GET", apiBase+"/api/posts/"+id, nil)
		if err != nil {
			http.Error(w, "cannot reach API", http.StatusBadGateway)
			return
		}
		if status == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		var p post
		if err := json.Unmarshal(data, &p); err != nil {
			http.Error(w, "bad API response", http.StatusBadGateway)
			return
		}
		renderTemplate(w, "single.html", map[string]interface{}{
			"Post":     p,
			"Content":  template.HTML(p.Content), //nolint:gosec // author-provided rich text
			"LoggedIn": loggedIn(r),
		})
	}
}

func loginForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	renderTemplate(w, "login.html", map[string]string{})
}

func loginSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(map[string]string{
			"username": strings.TrimSpace(r.FormValue("username")),
			"password": r.FormValue("password"),
		})

		req, _ := http.NewRequest("POST", apiBase+"/api/auth/login", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			renderTemplate(w, "login.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			renderTemplate(w, "login.html", map[string]string{"Error": apiError(resp)})
			return
		}

		// Pass the API's session cookie through to the browser.
		for _, c := range resp.Cookies() {
			if c.Name == cookieName {
				http.SetCookie(w, c)
			}
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func registerForm(w http.ResponseWriter, r *http.Request) {
	renderTemplate(w, "register.html", map[string]string{})
}

func registerSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body, _ := json.Marshal(map[string]string{
			"username": strings.TrimSpace(r.FormValue("username")),
			"email":    strings.TrimSpace(r.FormValue("email")),
			"password": r.FormValue("password"),
		})
		data, status, err := apiDo(r, "POST", apiBase+"/api/auth/register", body)
		if err != nil {
			renderTemplate(w, "register.html", map[string]string{"Error": "Cannot reach API: " + err.Error()})
			return
		}
		if status != http.StatusOK {
			renderTemplate(w, "register.html", map[string]string{"Error": errorFromBody(data, status)})
			return
		}
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{Name: cookieName, Value: "", Path: "/", MaxAge: -1})
	http.Redirect(w, r, "/", http.StatusFound)
}

func writeForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderTemplate(w, "write.html", map[string]interface{}{"LoggedIn": true})
	}
}

func writeSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, badForm := postBodyFromForm(r)
		if badForm != "" {
			renderTemplate(w, "write.html", map[string]interface{}{"Error": badForm, "LoggedIn": true})
			return
		}
		data, status, err := apiDo(r, "POST", apiBase+"/api/posts", body)
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "write.html", map[string]interface{}{"Error": errorFromBody(data, status), "LoggedIn": true})
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func editForm(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		data, status, err := apiDo(r, "GET", apiBase+"/api/posts/"+id, nil)
		if err != nil || status != http.StatusOK {
			http.NotFound(w, r)
			return
		}
		var p post
		if err := json.Unmarshal(data, &p); err != nil {
			http.Error(w, "bad API response", http.StatusBadGateway)
			return
		}
		renderTemplate(w, "write.html", map[string]interface{}{"Post": p, "LoggedIn": true})
	}
}

func editSubmit(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		body, badForm := postBodyFromForm(r)
		if badForm != "" {
			renderTemplate(w, "write.html", map[string]interface{}{"Error": badForm, "LoggedIn": true})
			return
		}
		data, status, err := apiDo(r, "PUT", apiBase+"/api/posts/"+id, body)
		if err != nil || status != http.StatusOK {
			renderTemplate(w, "write.html", map[string]interface{}{"Error": errorFromBody(data, status), "LoggedIn": true})
			return
		}
		http.Redirect(w, r, "/posts/"+id, http.StatusFound)
	}
}

func deletePost(apiBase string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		_, status, err := apiDo(r, "DELETE", apiBase+"/api/posts/"+id, nil)
		if err != nil {
			http.Error(w, "cannot reach API", http.StatusBadGateway)
			return
		}
		if status != http.StatusOK {
			http.Error(w, fmt.Sprintf("delete failed (%d)", status), status)
			return
		}
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

func postBodyFromForm(r *http.Request) ([]byte, string) {
	if err := r.ParseForm(); err != nil {
		return nil, "bad form"
	}
	fields := map[string]string{
		"title":       strings.TrimSpace(r.FormValue("title")),
		"description": strings.TrimSpace(r.FormValue("description")),
		"content":     r.FormValue("content"),
		"category":    strings.TrimSpace(r.FormValue("category")),
		"img":         strings.TrimSpace(r.FormValue("img")),
	}
	for _, required := range []string{"title", "description", "content", "category"} {
		if fields[required] == "" {
			return nil, "All fields except the image are required"
		}
	}
	body, _ := json.Marshal(fields)
	return body, ""
}

func loggedIn(r *http.Request) bool {
	c, err := r.Cookie(cookieName)
	return err == nil && c.Value != ""
}

// apiDo forwards a request to the API, carrying the browser's session cookie.
func apiDo(r *http.Request, method, url string, body []byte) ([]byte, int, error) {
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, url, strings.NewReader(string(body)))
	} else {
		req, err = http.NewRequest(method, url, nil)
	}
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c, err := r.Cookie(cookieName); err == nil {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return data, resp.StatusCode, nil
}

func apiError(resp *http.Response) string {
	data, _ := io.ReadAll(resp.Body)
	return errorFromBody(data, resp.StatusCode)
}

func errorFromBody(data []byte, status int) string {
	var errResp struct{ Error string }
	_ = json.Unmarshal(data, &errResp)
	if errResp.Error != "" {
		return errResp.Error
	}
	return fmt.Sprintf("API returned %d", status)
}
