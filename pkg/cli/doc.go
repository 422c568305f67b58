/*
Package cli provides command-line utilities shared by the gallery commands.

Output Formatting:

Listing commands support text, JSON and CSV output. Results implementing
Table render as aligned columns or CSV rows:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), result)

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background(), logger)
	defer stop()

Errors:

ConfigError and CommandError wrap failures; ExitCode maps them to the
process exit status.
*/
package cli
