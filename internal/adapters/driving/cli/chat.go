package cli

import (
	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the language model without retrieval",
	Long: `Sends each question straight to the configured language model and streams
the reply. No index is opened and no Terraform files are read.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	chat, closeFn, err := openChat(ctx, *settings)
	if err != nil {
		return err
	}
	defer closeFn()

	stdinHint(cmd)
	session := newConsole(cmd)
	defer session.Close()
	return chat.Serve(ctx, session, session)
}
