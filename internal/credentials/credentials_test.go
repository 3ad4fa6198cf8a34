package credentials

import (
	"errors"
	"io"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/cloudmap/cloudmap/internal/models"
)

// scriptedPrompter answers prompts from a fixed list and records which
// prompts were shown and whether each was secret.
type scriptedPrompter struct {
	answers []string
	labels  []string
	secret  []bool
}

func (s *scriptedPrompter) next(label string, secret bool) (string, error) {
	s.labels = append(s.labels, label)
	s.secret = append(s.secret, secret)
	if len(s.answers) == 0 {
		return "", io.ErrUnexpectedEOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedPrompter) Prompt(label string) (string, error) { return s.next(label, false) }
func (s *scriptedPrompter) PromptSecret(label string) (string, error) {
	return s.next(label, true)
}

func envOf(m map[string]string) Getenv {
	return func(k string) string { return m[k] }
}

func TestGet_AWSFromEnvironment(t *testing.T) {
	p := &scriptedPrompter{}
	got, err := Get(models.PlatformAWS, envOf(map[string]string{
		EnvAWSAccessKeyID:     "AKIAENV",
		EnvAWSSecretAccessKey: "envsecret",
		EnvAWSSessionToken:    "tok",
	}), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &models.AWSCredentials{AccessKeyID: "AKIAENV", SecretAccessKey: "envsecret", SessionToken: "tok"}
	if !reflect.DeepEqual(got.AWS, want) || got.Azure != nil {
		t.Errorf("got %+v", got)
	}
	if len(p.labels) != 0 {
		t.Errorf("no prompts expected, got %v", p.labels)
	}
}

func TestGet_AWSPromptsForMissingSecret(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"typedsecret"}}
	got, err := Get(models.PlatformAWS, envOf(map[string]string{EnvAWSAccessKeyID: "AKIAENV"}), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AWS.SecretAccessKey != "typedsecret" {
		t.Errorf("secret = %q", got.AWS.SecretAccessKey)
	}
	if !reflect.DeepEqual(p.labels, []string{"Enter AWS Secret Access Key: "}) || !reflect.DeepEqual(p.secret, []bool{true}) {
		t.Errorf("secret prompt must hide input: %v %v", p.labels, p.secret)
	}
}

func TestGet_AzurePromptsInOrder(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"tenant", "client", "secret"}}
	got, err := Get(models.PlatformAzure, envOf(nil), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := &models.AzureCredentials{TenantID: "tenant", ClientID: "client", ClientSecret: "secret"}
	if !reflect.DeepEqual(got.Azure, want) {
		t.Errorf("got %+v", got.Azure)
	}
	wantLabels := []string{"Enter Azure Tenant ID: ", "Enter Azure Client ID: ", "Enter Azure Client Secret: "}
	if !reflect.DeepEqual(p.labels, wantLabels) || !reflect.DeepEqual(p.secret, []bool{false, false, true}) {
		t.Errorf("prompts %v secret %v", p.labels, p.secret)
	}
}

func TestGet_UnsupportedPlatform(t *testing.T) {
	_, err := Get("gcp", envOf(nil), &scriptedPrompter{})
	if !errors.Is(err, models.ErrUnknownPlatform) {
		t.Errorf("want ErrUnknownPlatform, got %v", err)
	}
}

func TestGet_EmptyAnswerAndNoPrompter(t *testing.T) {
	_, err := Get(models.PlatformAzure, envOf(nil), &scriptedPrompter{answers: []string{""}})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("empty answer: want ErrNoInput, got %v", err)
	}
	_, err = Get(models.PlatformAWS, envOf(nil), nil)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("nil prompter: want ErrNoInput, got %v", err)
	}
}

func TestGet_StopsAfterFirstFailure(t *testing.T) {
	p := &scriptedPrompter{}
	_, err := Get(models.PlatformAzure, envOf(nil), p)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("want EOF error, got %v", err)
	}
	if len(p.labels) != 1 {
		t.Errorf("want one prompt before giving up, got %v", p.labels)
	}
}

func TestResolveSubscription_Precedence(t *testing.T) {
	env := envOf(map[string]string{EnvAzureSubscription: "from-env"})
	cases := []struct {
		name, flag, configured string
		getenv                 Getenv
		want                   string
	}{
		{"flag wins", "from-flag", "from-config", env, "from-flag"},
		{"config next", "", "from-config", env, "from-config"},
		{"placeholder skipped", "", "subscription_id", env, "from-env"},
		{"placeholder any case", "", "SUBSCRIPTION_ID", env, "from-env"},
		{"env last", "", "", env, "from-env"},
	}
	for _, tc := range cases {
		got, err := ResolveSubscription(tc.flag, tc.configured, tc.getenv, nil)
		if err != nil || got != tc.want {
			t.Errorf("%s: got %q, %v; want %q", tc.name, got, err, tc.want)
		}
	}
}

func TestResolveSubscription_Prompt(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"typed-sub"}}
	got, err := ResolveSubscription("", "subscription_id", envOf(nil), p)
	if err != nil || got != "typed-sub" {
		t.Errorf("got %q, %v", got, err)
	}

	_, err = ResolveSubscription("", "", envOf(nil), &scriptedPrompter{answers: []string{"subscription_id"}})
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("placeholder answer: want ErrNoInput, got %v", err)
	}
	_, err = ResolveSubscription("", "", envOf(nil), nil)
	if !errors.Is(err, ErrNoInput) {
		t.Errorf("no prompter: want ErrNoInput, got %v", err)
	}
}

// TestTerminalPrompter_Pipe checks that non-terminal input is read line by
// line for both visible and secret prompts.
func TestTerminalPrompter_Pipe(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := w.WriteString("AKIAPIPE\n  pipedsecret  \n"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	var out strings.Builder
	p := &TerminalPrompter{In: r, Out: &out}

	id, err := p.Prompt("id: ")
	if err != nil || id != "AKIAPIPE" {
		t.Errorf("Prompt: got %q, %v", id, err)
	}
	secret, err := p.PromptSecret("secret: ")
	if err != nil || secret != "pipedsecret" {
		t.Errorf("PromptSecret: got %q, %v", secret, err)
	}
	if out.String() != "id: secret: " {
		t.Errorf("prompt output = %q", out.String())
	}
	if _, err := p.Prompt("more: "); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("exhausted input: want ErrUnexpectedEOF, got %v", err)
	}
}
