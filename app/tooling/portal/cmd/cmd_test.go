package cmd

import (
	"path/filepath"
	"strings"
	"testing"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_CommandErrors(t *testing.T) {
	dir := t.TempDir()

	tt := []struct {
		name string
		args []string
		err  string
	}{
		{"wave", []string{"wave", "-m", "hi", "-c", "nope"}, "invalid contract address"},
		{"status", []string{"status", "-c", "nope"}, "invalid contract address"},
		{"account", []string{"account", "-p", dir, "-a", "missing"}, "missing"},
	}

	t.Log("Given the need to report command failures to the caller.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen running %s.", testID, strings.Join(tst.args, " "))
				{
					rootCmd.SetArgs(tst.args)
					t.Cleanup(func() { rootCmd.SetArgs(nil) })

					err := rootCmd.Execute()
					if err == nil {
						t.Fatalf("\t%s\tTest %d:\tShould get an error back from the command.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get an error back from the command.", success, testID)

					if !strings.Contains(err.Error(), tst.err) {
						t.Fatalf("\t%s\tTest %d:\tShould mention %q: %s", failed, testID, tst.err, err)
					}
					t.Logf("\t%s\tTest %d:\tShould mention %q.", success, testID, tst.err)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Generate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "accounts")

	t.Log("Given the need to create a key file.")
	{
		rootCmd.SetArgs([]string{"generate", "-p", dir, "-a", "kennedy"})
		t.Cleanup(func() { rootCmd.SetArgs(nil) })

		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("\t%s\tShould be able to generate a key file: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate a key file.", success)

		rootCmd.SetArgs([]string{"generate", "-p", dir, "-a", "kennedy"})
		if err := rootCmd.Execute(); err == nil || !strings.Contains(err.Error(), "already exists") {
			t.Fatalf("\t%s\tShould refuse to overwrite the key file: %v", failed, err)
		}
		t.Logf("\t%s\tShould refuse to overwrite the key file.", success)

		rootCmd.SetArgs([]string{"account", "-p", dir, "-a", "kennedy"})
		if err := rootCmd.Execute(); err != nil {
			t.Fatalf("\t%s\tShould be able to read the account back: %s", failed, err)
		}
		t.Logf("\t%s\tShould be able to read the account back.", success)
	}
}
