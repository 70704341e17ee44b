package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/tonimelisma/spdrive/internal/graph"
	"github.com/tonimelisma/spdrive/pkg/quickxorhash"
)

// errHashMismatch reports an upload whose server-side hash disagrees with
// the local content.
var errHashMismatch = errors.New("hash mismatch")

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and folders",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <remote-path>...",
		Short: "Download one or more files",
		Long: `Download files from the document library. Several paths are fetched
concurrently, up to parallel_downloads at a time. Each file is written
next to its final name with a .partial suffix and renamed when complete.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGet,
	}

	cmd.Flags().StringP("output", "o", ".", "local directory to download into")

	return cmd
}

func newPutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put <local-path> <remote-folder>",
		Short: "Upload a file, replacing any existing file of the same name",
		Args:  cobra.ExactArgs(2),
		RunE:  runPut,
	}

	cmd.Flags().String("content-type", "", "Content-Type to send (default: from extension, else sniffed)")

	return cmd
}

// cleanRemotePath strips leading/trailing slashes, returns "" for root.
func cleanRemotePath(p string) string {
	return strings.Trim(p, "/")
}

// uploadFolder turns a user-supplied folder into the form Upload expects:
// a leading slash and no trailing slash, or "" for the drive root.
func uploadFolder(p string) string {
	clean := cleanRemotePath(p)
	if clean == "" {
		return ""
	}

	return "/" + clean
}

func runLs(cmd *cobra.Command, args []string) error {
	remotePath := ""
	if len(args) > 0 {
		remotePath = args[0]
	}

	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	drive, err := sess.Drive(ctx, cc.Cfg.Drive)
	if err != nil {
		return err
	}

	items, err := sess.Client.ListItems(ctx, sess.Token, drive.ID, cleanRemotePath(remotePath))
	if err != nil {
		return fmt.Errorf("listing %q: %w", "/"+cleanRemotePath(remotePath), err)
	}

	if cc.Flags.JSON {
		return printItemsJSON(cc.Out, items)
	}

	printItemsTable(cc.Out, items)

	return nil
}

// itemJSON is the JSON output schema for a single item in ls and put output.
type itemJSON struct {
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	IsFolder     bool   `json:"is_folder"`
	ModifiedAt   string `json:"modified_at"`
	ID           string `json:"id"`
	MimeType     string `json:"mime_type,omitempty"`
	QuickXorHash string `json:"quick_xor_hash,omitempty"`
	WebURL       string `json:"web_url,omitempty"`
}

func toItemJSON(item *graph.Item) itemJSON {
	return itemJSON{
		Name:         item.Name,
		Size:         item.Size,
		IsFolder:     item.IsFolder,
		ModifiedAt:   item.ModifiedAt.UTC().Format(time.RFC3339),
		ID:           item.ID,
		MimeType:     item.MimeType,
		QuickXorHash: item.QuickXorHash,
		WebURL:       item.WebURL,
	}
}

func printItemsJSON(w io.Writer, items []graph.Item) error {
	out := make([]itemJSON, 0, len(items))
	for i := range items {
		out = append(out, toItemJSON(&items[i]))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func printItemsTable(w io.Writer, items []graph.Item) {
	// Sort: folders first, then alphabetical.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].IsFolder != items[j].IsFolder {
			return items[i].IsFolder
		}

		return items[i].Name < items[j].Name
	})

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := make([][]string, 0, len(items))

	for i := range items {
		name := items[i].Name
		size := formatSize(items[i].Size)

		if items[i].IsFolder {
			name += "/"
			size = fmt.Sprintf("%d items", items[i].ChildCount)
		}

		rows = append(rows, []string{name, size, formatTime(items[i].ModifiedAt)})
	}

	printTable(w, headers, rows)
}

// downloadResult records the outcome of one path in a get.
type downloadResult struct {
	remote string
	local  string
	bytes  int
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	outDir, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	drive, err := sess.Drive(ctx, cc.Cfg.Drive)
	if err != nil {
		return err
	}

	var done func(downloadResult)

	if len(args) > 1 && !cc.Flags.Quiet && !cc.Flags.JSON && isTerminal(cc.Err) {
		bar := newDownloadBar(cc.Err, len(args))
		defer func() { _ = bar.Finish() }()

		done = func(downloadResult) { _ = bar.Add(1) }
	}

	results, err := downloadAll(ctx, sess.Transfer, sess.Token, drive.ID, args, outDir, cc.Cfg.ParallelDownloads, done)
	if err != nil {
		return err
	}

	for _, r := range results {
		cc.Statusf("Downloaded %s -> %s (%s)\n", r.remote, r.local, formatSize(int64(r.bytes)))
	}

	return nil
}

// newDownloadBar returns a file-count progress bar for a multi-file get.
func newDownloadBar(w io.Writer, files int) *progressbar.ProgressBar {
	return progressbar.NewOptions(files,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Downloading"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// downloadTargets maps each remote path to its local file under outDir.
// Two remotes with the same base name would race on one local file, so
// that is refused before anything is fetched.
func downloadTargets(remotes []string, outDir string) ([]string, error) {
	locals := make([]string, len(remotes))
	seen := make(map[string]string, len(remotes))

	for i, remote := range remotes {
		clean := cleanRemotePath(remote)
		if clean == "" {
			return nil, fmt.Errorf("%q is not a file path", remote)
		}

		base := path.Base(clean)
		if prev, dup := seen[base]; dup {
			return nil, fmt.Errorf("%q and %q would both be saved as %q; download them separately",
				prev, remote, base)
		}

		seen[base] = remote
		locals[i] = filepath.Join(outDir, base)
	}

	return locals, nil
}

// downloadAll fetches every remote path into outDir, at most limit at a
// time. The first failure cancels the remaining downloads. Results are
// returned in argument order. done, if non-nil, is called from the worker
// goroutines as each file lands and must be safe for concurrent use.
func downloadAll(
	ctx context.Context, client *graph.Client, tok *graph.Token,
	driveID string, remotes []string, outDir string, limit int,
	done func(downloadResult),
) ([]downloadResult, error) {
	locals, err := downloadTargets(remotes, outDir)
	if err != nil {
		return nil, err
	}

	results := make([]downloadResult, len(remotes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, remote := range remotes {
		g.Go(func() error {
			data, err := client.DownloadItem(gctx, tok, driveID, cleanRemotePath(remote))
			if err != nil {
				return fmt.Errorf("downloading %q: %w", remote, err)
			}

			if err := writeFileAtomic(locals[i], data); err != nil {
				return err
			}

			results[i] = downloadResult{remote: remote, local: locals[i], bytes: len(data)}

			if done != nil {
				done(results[i])
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// writePartial writes a download's bytes to its .partial file. Tests swap it
// to simulate a write that fails midway.
var writePartial = os.WriteFile

// writeFileAtomic writes data to target via a .partial sibling and a rename,
// so an interrupted download never leaves a truncated file under the final
// name.
func writeFileAtomic(target string, data []byte) error {
	partial := target + ".partial"

	if err := writePartial(partial, data, 0o644); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("writing %q: %w", partial, err)
	}

	if err := os.Rename(partial, target); err != nil {
		_ = os.Remove(partial)
		return fmt.Errorf("renaming download to %q: %w", target, err)
	}

	return nil
}

// detectContentType picks the Content-Type for an upload: the explicit
// value if given, else the extension's registered type, else a sniff of
// the content.
func detectContentType(explicit, name string, data []byte) string {
	if explicit != "" {
		return explicit
	}

	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}

	return http.DetectContentType(data)
}

// verifyUploadHash compares the QuickXorHash the service reports for an
// uploaded item with the hash of the bytes sent. A missing server hash is
// not an error.
func verifyUploadHash(item *graph.Item, data []byte) error {
	if item.QuickXorHash == "" {
		return nil
	}

	local := quickxorhash.Base64(data)
	if local != item.QuickXorHash {
		return fmt.Errorf("%w for %q: local %s, remote %s", errHashMismatch, item.Name, local, item.QuickXorHash)
	}

	return nil
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath, remoteFolder := args[0], args[1]
	ctx := cmd.Context()
	cc := mustCLIContext(ctx)

	explicitType, err := cmd.Flags().GetString("content-type")
	if err != nil {
		return err
	}

	fi, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("reading %q: %w", localPath, err)
	}

	if fi.IsDir() {
		return fmt.Errorf("%q is a directory", localPath)
	}

	if fi.Size() > graph.SimpleUploadMaxSize {
		return fmt.Errorf("%q is %s; single-request uploads are limited to %s",
			localPath, formatSize(fi.Size()), formatSize(graph.SimpleUploadMaxSize))
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading %q: %w", localPath, err)
	}

	name := filepath.Base(localPath)
	contentType := detectContentType(explicitType, name, data)

	sess, err := NewSession(ctx, cc)
	if err != nil {
		return err
	}

	drive, err := sess.Drive(ctx, cc.Cfg.Drive)
	if err != nil {
		return err
	}

	item, err := sess.Transfer.Upload(ctx, sess.Token, drive.ID, uploadFolder(remoteFolder), name, contentType, data)
	if err != nil {
		return fmt.Errorf("uploading %q: %w", name, err)
	}

	if err := verifyUploadHash(item, data); err != nil {
		return err
	}

	if cc.Flags.JSON {
		enc := json.NewEncoder(cc.Out)
		enc.SetIndent("", "  ")

		return enc.Encode(toItemJSON(item))
	}

	cc.Statusf("Uploaded %s -> %s/%s (%s, %s)\n",
		localPath, uploadFolder(remoteFolder), item.Name, formatSize(item.Size), contentType)

	return nil
}
