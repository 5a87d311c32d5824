// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the FSInfo struct, which stores file system metadata.
//
// Why store the file path?
//
// The file path connects a parsed in-memory definition back to its physical
// source on disk. Parse errors, duplicate-name warnings and validation
// reports all point at it so the author knows exactly which file to fix.
package model

type FSInfo struct {
	FilePath string `json:"filePath" yaml:"filePath"`
}

func NewFSInfo(filePath string) *FSInfo {
	return &FSInfo{
		FilePath: filePath,
	}
}

// String returns the file path, or "<memory>" for definitions built in code.
func (f *FSInfo) String() string {
	if f == nil || f.FilePath == "" {
		return "<memory>"
	}
	return f.FilePath
}
