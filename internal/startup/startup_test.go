package startup

import (
	"net/http"
	"os"
	"testing"

	"github.com/gorilla/mux"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value        string
		defaultValue bool
		want         bool
	}{
		{"", true, true},
		{"", false, false},
		{"true", false, true},
		{"1", false, true},
		{"false", true, false},
		{"0", true, false},
		{"not-a-bool", true, true},
		{"not-a-bool", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL_VAR", tt.value)
			if got := getEnvBool("TEST_BOOL_VAR", tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.value, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/api/thumbnail/image", "api/thumbnail"},
		{"/api/thumbnail", "api/thumbnail"},
		{"/health", "health"},
		{"/", ""},
		{"/api", "api"},
	}

	for _, tt := range tests {
		if got := getRouteGroup(tt.path); got != tt.want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestGetRoutes(t *testing.T) {
	noop := func(http.ResponseWriter, *http.Request) {}

	r := mux.NewRouter()
	r.HandleFunc("/health", noop).Methods("GET", "HEAD").Name("health")
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/thumbnail/image", noop).Methods("POST").Name("imageThumbnail")

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes failed: %v", err)
	}

	found := make(map[string]string)
	for _, route := range routes {
		found[route.Method+" "+route.Path] = route.Name
	}

	for key, name := range map[string]string{
		"GET /health":               "health",
		"HEAD /health":              "health",
		"POST /api/thumbnail/image": "imageThumbnail",
	} {
		if got, ok := found[key]; !ok || got != name {
			t.Errorf("route %q: got name %q (present=%v), want %q", key, got, ok, name)
		}
	}
}

func TestLogHelpersDoNotPanic(_ *testing.T) {
	LogVipsInit(false, false)
	LogVipsInit(true, true)
	LogVipsInit(true, false)
	LogJobsInit(4)
	LogHTTPRoutes(mux.NewRouter(), false)
	LogServerStarted(ServerConfig{Port: "8080", MetricsEnabled: true})
	LogShutdownInitiated("SIGTERM")
	LogShutdownStep("Stopping server")
	LogShutdownStepComplete("Server stopped")
	LogShutdownComplete()
}
