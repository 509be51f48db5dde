package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkwell/inkwell/cmd/cli/config"
	"github.com/spf13/cobra"
)

// contentTypeByExt maps accepted file extensions to their content type.
var contentTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
}

// InitUpload registers the upload command on the root command.
func InitUpload(rootCmd *cobra.Command) {
	rootCmd.AddCommand(&cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an image and print its reference",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]

			contentType, ok := contentTypeByExt[strings.ToLower(filepath.Ext(path))]
			if !ok {
				return fmt.Errorf("only JPEG, PNG, or GIF files can be uploaded")
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open file: %w", err)
			}
			defer f.Close()

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			hdr := textproto.MIMEHeader{
				"Content-Disposition": {fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(path))},
				"Content-Type":        {contentType},
			}
			part, err := mw.CreatePart(hdr)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, f); err != nil {
				return err
			}
			mw.Close()

			resp, err := http.Post(config.APIURL()+"/api/upload", mw.FormDataContentType(), &buf)
			if err != nil {
				return fmt.Errorf("upload request: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				var apiErr struct {
					Error string `json:"error"`
				}
				if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Error != "" {
					return fmt.Errorf("%s (%d)", apiErr.Error, resp.StatusCode)
				}
				return fmt.Errorf("upload failed with status %d", resp.StatusCode)
			}

			var out struct {
				URL string `json:"url"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				return err
			}

			fmt.Println(out.URL)
			return nil
		},
	})
}
