// Package editor is a minimal text editor app backed by a single file.
//
// Save and Load run as commands off the update loop and report back with
// Saved/SaveFailed and Loaded/LoadFailed. Loading rejects binary content
// (mimetype) and transcodes non UTF-8 text to UTF-8 (chardet + x/net charset).
// Outcomes are surfaced to the user through ShellContext.Notify.
package editor
