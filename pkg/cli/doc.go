/*
Package cli provides the small pieces shared by the placement commands:
output formatting, typed command errors with exit codes, and signal
handling.

Output Formatting:

	format, err := cli.ParseFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Results that implement Table are printed as aligned columns in text mode.

Exit Codes:

Commands that have already printed their findings return an ExitError with
a nil Err so main exits non-zero without repeating them:

	os.Exit(cli.ExitCode(err))

Signal Handling:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
