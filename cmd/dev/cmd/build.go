package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/gophertribe/devtool/build"
)

const (
	binaryPath  = "dist/tmd2771"
	mainPackage = "./cmd/tmd2771"
	buildImage  = "gophertribe/gobuild:1.25-bookworm"
)

func BuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build the tmd2771 cli",
		Long: `Build the tmd2771 cli into dist/.

A native build uses the local toolchain. Building for another platform
(e.g. --os linux --arch arm64 for a Raspberry Pi) runs inside the build
container because the mcp2221 adapter needs cgo.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			targetOS := cmd.Flag("os").Value.String()
			targetArch := cmd.Flag("arch").Value.String()
			version := cmd.Flag("version").Value.String()
			crossOS := cmd.Flag("cross-os").Value.String()
			crossArch := cmd.Flag("cross-arch").Value.String()

			if targetOS == runtime.GOOS && targetArch == runtime.GOARCH {
				if crossOS != "" && crossArch != "" {
					targetOS = crossOS
					targetArch = crossArch
				}
				return build.GoBuild(binaryPath, mainPackage, build.GoBuildOpts{
					Version:       version,
					InjectVersion: true,
					ConfigPackage: "main",
					EnableCgo:     true,
					Arch:          targetArch,
					OS:            targetOS,
				})
			}

			noCache, err := cmd.Flags().GetBool("no-cache")
			if err != nil {
				return fmt.Errorf("could not get no-cache flag: %w", err)
			}
			// the container re-invokes this tool natively with the cross target
			return build.Docker(cmd.Context(), fmt.Sprintf("./dev-%s-%s", targetOS, targetArch), []string{"build", "--version", version, "--cross-os", targetOS, "--cross-arch", targetArch}, build.DockerBuildOpts{
				NoCache: noCache,
				Image:   buildImage,
			})
		},
	}
	cmd.Flags().Bool("no-cache", false, "do not use cache when building the cli")
	cmd.Flags().String("version", "latest", "version of the cli")
	cmd.Flags().String("os", runtime.GOOS, "os to build for")
	cmd.Flags().String("arch", runtime.GOARCH, "arch to build for")
	cmd.Flags().String("cross-os", "", "os to cross-compile for")
	cmd.Flags().String("cross-arch", "", "arch to cross-compile for")
	return cmd
}
