package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"github.com/ochronus/goputiokit/pkg/putio"
	"github.com/spf13/cobra"
)

func newFilesCmd(c *cli) *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "Browse and manage files",
	}

	listCmd := &cobra.Command{
		Use:   "list [parent-id]",
		Short: "List files, optionally inside a folder",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var parentID *int64
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				parentID = &id
			}

			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()

			res := <-client.ListFiles(cmd.Context(), parentID)
			if res.Err != nil {
				return fmt.Errorf("failed to list files: %w", res.Err)
			}
			printFiles(c, res.Value)
			return nil
		},
	}

	var mkdirParent int64
	mkdirCmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()
			return report(c, <-client.CreateFolder(cmd.Context(), args[0], mkdirParent), "create folder %q", args[0])
		},
	}
	mkdirCmd.Flags().Int64VarP(&mkdirParent, "parent", "p", 0, "Parent folder id")

	rmCmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()
			return report(c, <-client.DeleteFiles(cmd.Context(), ids), "delete %s", strings.Join(args, ", "))
		},
	}

	mvCmd := &cobra.Command{
		Use:   "mv <parent-id> <id>...",
		Short: "Move files into a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()
			return report(c, <-client.MoveFiles(cmd.Context(), ids[1:], ids[0]), "move %s into %d", strings.Join(args[1:], ", "), ids[0])
		},
	}

	renameCmd := &cobra.Command{
		Use:   "rename <id> <name>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()
			return report(c, <-file.Rename(cmd.Context(), args[1]), "rename %d to %q", file.ID, args[1])
		},
	}

	var uploadParent int64
	uploadCmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer f.Close()

			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()

			res := <-client.UploadFile(cmd.Context(), filepath.Base(args[0]), f, uploadParent)
			if res.Err != nil {
				return fmt.Errorf("failed to upload %s: %w", args[0], res.Err)
			}
			fmt.Fprintf(c.out, "Uploaded %s as %d\n", res.Value.Name, res.Value.ID)
			return nil
		},
	}
	uploadCmd.Flags().Int64VarP(&uploadParent, "parent", "p", 0, "Parent folder id")

	var shareWith []string
	shareCmd := &cobra.Command{
		Use:   "share <id>...",
		Short: "Share files with friends",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(shareWith) == 0 {
				return fmt.Errorf("at least one --with friend is required")
			}
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			client, done, err := c.client()
			if err != nil {
				return err
			}
			defer done()
			return report(c, <-client.ShareFiles(cmd.Context(), ids, shareWith), "share with %s", strings.Join(shareWith, ", "))
		},
	}
	shareCmd.Flags().StringSliceVarP(&shareWith, "with", "w", nil, "Friends to share with")

	sharedWithCmd := &cobra.Command{
		Use:   "shared-with <id>",
		Short: "List the friends a file is shared with",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()
			res := <-file.SharedWith(cmd.Context())
			if res.Err != nil {
				return fmt.Errorf("failed to list shares: %w", res.Err)
			}
			for _, friend := range res.Value {
				fmt.Fprintf(c.out, "%d\t%s\n", friend.ShareID, friend.Username)
			}
			return nil
		},
	}

	unshareCmd := &cobra.Command{
		Use:   "unshare <id> [share-id]...",
		Short: "Revoke shares, or every share when none are given",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			shareIDs, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			friends := make([]putio.Friend, 0, len(shareIDs))
			for _, id := range shareIDs {
				friends = append(friends, putio.Friend{ShareID: id})
			}
			return report(c, <-file.Unshare(cmd.Context(), friends), "unshare %d", file.ID)
		},
	}

	var clearPosition bool
	positionCmd := &cobra.Command{
		Use:   "position <id> [seconds]",
		Short: "Show, set or clear the playback position of a video",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()

			switch {
			case clearPosition:
				return report(c, <-file.DeleteVideoPosition(cmd.Context()), "clear position of %d", file.ID)
			case len(args) == 2:
				seconds, err := strconv.Atoi(args[1])
				if err != nil || seconds < 0 {
					return fmt.Errorf("invalid position %q", args[1])
				}
				return report(c, <-file.SetVideoPosition(cmd.Context(), seconds), "set position of %d", file.ID)
			default:
				fmt.Fprintf(c.out, "%d\n", <-file.Progress(cmd.Context()))
				return nil
			}
		},
	}
	positionCmd.Flags().BoolVar(&clearPosition, "clear", false, "Clear the stored position")

	hlsCmd := &cobra.Command{
		Use:   "hls <id>",
		Short: "Print the HLS playlist URL of a video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, done, err := c.file(cmd, args[0])
			if err != nil {
				return err
			}
			defer done()
			playlist, ok := file.HLSPlaylist()
			if !ok {
				return fmt.Errorf("no playlist available without a token")
			}
			fmt.Fprintln(c.out, playlist)
			return nil
		},
	}

	filesCmd.AddCommand(listCmd, mkdirCmd, rmCmd, mvCmd, renameCmd, uploadCmd, shareCmd, sharedWithCmd, unshareCmd, positionCmd, hlsCmd)
	return filesCmd
}

// file fetches the file with the given id, bound to an authenticated client.
func (c *cli) file(cmd *cobra.Command, rawID string) (*putio.File, func(), error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, nil, err
	}
	client, done, err := c.client()
	if err != nil {
		return nil, nil, err
	}
	res := <-client.GetFile(cmd.Context(), id)
	if res.Err != nil {
		done()
		return nil, nil, fmt.Errorf("failed to get file %d: %w", id, res.Err)
	}
	return res.Value, done, nil
}

// printFiles prints folders first, each group in natural order.
func printFiles(c *cli, files []*putio.File) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].IsFolder() != files[j].IsFolder() {
			return files[i].IsFolder()
		}
		return natural.Less(files[i].Name, files[j].Name)
	})

	for _, f := range files {
		kind := "file"
		if f.IsFolder() {
			kind = "dir"
		}
		flags := ""
		if f.HasMP4 {
			flags += " mp4"
		}
		if f.IsShared {
			flags += " shared"
		}
		fmt.Fprintf(c.out, "%d\t%s\t%d\t%s%s\n", f.ID, kind, f.Size, f.Name, flags)
	}
}

func report(c *cli, ok bool, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if !ok {
		return fmt.Errorf("failed to %s", what)
	}
	fmt.Fprintf(c.out, "OK: %s\n", what)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, r := range raw {
		id, err := parseID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
