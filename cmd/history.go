package cmd

import (
	"fmt"

	"devai/chat"
	"devai/paths"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	Long:  `List the session transcripts under ~/.devai/history, newest first`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		historyDir, err := paths.HistoryDir()
		if err != nil {
			return err
		}

		sessions, err := chat.ListSessions(historyDir)
		if err != nil {
			return fmt.Errorf("failed to list sessions: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No sessions recorded.")
			fmt.Fprintln(out, "Transcripts are written while history is enabled: devai config set history true")
			return nil
		}

		for i, sessionID := range sessions {
			status := ""
			if i == 0 {
				status = " (latest)"
			}
			fmt.Fprintf(out, "  %s%s\n", sessionID, status)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print the messages of a recorded session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		historyDir, err := paths.HistoryDir()
		if err != nil {
			return err
		}

		messages, err := chat.LoadTranscript(historyDir, args[0])
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, msg := range messages {
			fmt.Fprintf(out, "[%s] %s\n%s\n\n", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Role, msg.Content)
		}
		return nil
	},
}

func init() {
	historyCmd.AddCommand(historyShowCmd)
}
