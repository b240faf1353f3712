package main

import "danmaku/cmd"

// @title danmaku analyzer API
// @version 1.0
// @description Fetches bilibili danmaku by keyword or video, and serves frequency analysis, word clouds and Excel export.
func main() {
	cmd.Execute()
}
