// Package testsupport holds helpers shared by Pixal package tests: a config
// builder rooted in a temp workspace, file writers and stub executables.
package testsupport
