// Package local implements rigrun.Environment for the local machine using
// os/exec. The artifact preparer runs preprocess commands through it, and
// tests use it as a stand-in device.
package local
