package main

import (
	"github.com/inkwell/inkwell/cmd/cli/auth"
	"github.com/inkwell/inkwell/cmd/cli/posts"
	"github.com/inkwell/inkwell/cmd/cli/root"
	"github.com/inkwell/inkwell/cmd/cli/upload"
)

func main() {
	auth.InitAuth(root.RootCmd)
	posts.InitPosts(root.RootCmd)
	upload.InitUpload(root.RootCmd)
	root.Execute()
}
