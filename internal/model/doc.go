// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for transcript messages and
// supporting references.
//
// # Key Types
//
//   - Message: immutable transcript entry with role, body and creation time
//   - Role: user or system
//   - Reference: supporting passage with a relevance score in [0,1]
//   - ReferenceSet: the side list, replaced in full on every answer
//
// # Usage
//
//	msg := model.NewUserMessage("哪里有避难所？")
//	fmt.Println(msg.Timestamp()) // "09:05"
//
//	var refs model.ReferenceSet
//	refs.Replace([]model.Reference{{Text: "...", Score: 0.87}})
package model
