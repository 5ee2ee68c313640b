// Package git keeps a local checkout of a remote repository current using
// go-git: clone when missing, otherwise fetch and hard reset to the remote
// branch head.
package git
