package main

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/fairguide/internal/config"
)

// runCLI executes the root command in process and returns its output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateEnv(t)
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default, since flag variables are
// package globals shared by all test runs.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// isolateEnv blanks the overrides a developer .env may have set.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvSOAPURL, config.EnvSOAPUser, config.EnvSOAPPassword,
		config.EnvMediaURL, config.EnvStorageDir, config.EnvLaTeX,
		config.EnvAddr, config.EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

const envelopeOpen = `<?xml version="1.0" encoding="UTF-8"?>
<SOAP-ENV:Envelope xmlns:SOAP-ENV="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="http://www.sugarcrm.com/sugarcrm"><SOAP-ENV:Body>`

const envelopeClose = `</SOAP-ENV:Body></SOAP-ENV:Envelope>`

// account is one CRM row served by the fake SOAP endpoint.
type account map[string]string

// fakeCRM serves login, logout and a single page of accounts. Requests with
// an id query only receive the matching account.
func fakeCRM(t *testing.T, accounts ...account) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		action := r.Header.Get("SOAPAction")
		action = action[strings.LastIndex(action, "/")+1:]

		w.Header().Set("Content-Type", "text/xml")
		switch action {
		case "login":
			_, _ = io.WriteString(w, envelopeOpen+`<ns1:loginResponse><return><id>s1</id><error><number>0</number></error></return></ns1:loginResponse>`+envelopeClose)
		case "logout":
			_, _ = io.WriteString(w, envelopeOpen+`<ns1:logoutResponse><return><number>0</number></return></ns1:logoutResponse>`+envelopeClose)
		case "get_entry_list":
			if !strings.Contains(string(body), "<offset>0</offset>") {
				_, _ = io.WriteString(w, entryList(nil))
				return
			}
			var selected []account
			for _, a := range accounts {
				if !strings.Contains(string(body), "accounts.id") || strings.Contains(string(body), "&#39;"+a["id"]+"&#39;") {
					selected = append(selected, a)
				}
			}
			_, _ = io.WriteString(w, entryList(selected))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func entryList(accounts []account) string {
	var sb strings.Builder
	sb.WriteString(envelopeOpen)
	fmt.Fprintf(&sb, `<ns1:get_entry_listResponse><return><result_count>%d</result_count><next_offset>%d</next_offset><entry_list>`, len(accounts), len(accounts))
	for _, a := range accounts {
		fmt.Fprintf(&sb, `<item><id>%s</id><module_name>Accounts</module_name><name_value_list>`, a["id"])
		for name, value := range a {
			fmt.Fprintf(&sb, `<item><name>%s</name><value>%s</value></item>`, name, xmlEscape(value))
		}
		sb.WriteString(`</name_value_list></item>`)
	}
	sb.WriteString(`</entry_list><error><number>0</number></error></return></ns1:get_entry_listResponse>`)
	sb.WriteString(envelopeClose)
	return sb.String()
}

func xmlEscape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// fakeMedia answers 404 for every asset, so placeholders are used.
func fakeMedia(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	return srv
}

// fakeLaTeX writes a compiler script that copies its input to the PDF.
func fakeLaTeX(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake compiler is a shell script")
	}
	path := filepath.Join(t.TempDir(), "fakelatex")
	script := "#!/bin/sh\nfor a; do tex=\"$a\"; done\ncp \"$tex\" \"${tex%.tex}.pdf\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

// writeConfig writes a config file pointing at the fake services.
func writeConfig(t *testing.T, soapURL, mediaURL, latexCmd string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := fmt.Sprintf(`storage_dir: %s
crm:
  url: %s
  user: soap
  password_hash: 5f4dcc3b5aa765d61d8327deb882cf99
assets:
  base_url: %s
latex:
  command: %s
logging:
  level: error
`, filepath.Join(dir, "storage"), soapURL, mediaURL, latexCmd)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}
