package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pyama86/opsboard/domain/entity"
	"github.com/pyama86/opsboard/domain/repository"
)

var (
	sessionToken string
	sessionUser  string
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the locally stored API token",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store an API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		s := &entity.Session{Token: sessionToken}
		if sessionUser != "" {
			var u entity.User
			if err := json.Unmarshal([]byte(sessionUser), &u); err != nil {
				return fmt.Errorf("invalid --user-json: %w", err)
			}
			s.User = &u
		}
		r := sessionRepository()
		if err := r.Save(s); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Session saved to %s\n", r.Path())
		return nil
	},
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		r := sessionRepository()
		s, err := r.Load()
		if errors.Is(err, repository.ErrNoSession) {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", maskToken(s.Token))
		if s.User != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "user:  %s <%s> id=%d role=%s department=%d\n", s.User.Name, s.User.Email, s.User.ID, s.User.Role, s.User.Department)
		}
		return nil
	},
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sessionRepository().Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared.")
		return nil
	},
}

// sessionRepository は API の設定が無くても使えるよう、設定が読めなければ既定のパスを使う
func sessionRepository() *repository.FileSessionRepository {
	cfg, err := repository.NewConfigRepository(configPath)
	if err != nil {
		slog.Debug("Using default session path", slog.Any("err", err))
		return repository.NewFileSessionRepository(repository.DefaultSessionPath())
	}
	return repository.NewFileSessionRepository(cfg.Session.Path)
}

func maskToken(t string) string {
	if len(t) <= 8 {
		return "********"
	}
	return t[:4] + "…" + t[len(t)-4:]
}

func init() {
	sessionSetCmd.Flags().StringVar(&sessionToken, "token", "", "API bearer token")
	sessionSetCmd.Flags().StringVar(&sessionUser, "user-json", "", `user info as JSON, e.g. {"id":1,"name":"alice"}`)
	_ = sessionSetCmd.MarkFlagRequired("token")

	sessionCmd.AddCommand(sessionSetCmd, sessionShowCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}
