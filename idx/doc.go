// Copyright 2021 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package idx implements reading .index files.
//
// The .index file contains a list of dictionary headwords and the associated
// offset and size of the definition in the .dict file. Each line is made up
// of tab separated columns:
//  1. The headword.
//  2. The offset of the definition in the .dict file.
//  3. The size of the definition in the .dict file.
//  4. An optional original headword, used for display when the headword
//     was normalized by the dictionary compiler.
//
// Offsets and sizes are written in base 64 using the characters A-Z, a-z,
// 0-9, '+', and '/', most significant digit first.
//
// Headwords beginning with "00-database-" (or the older "00database") are
// metadata entries. The "00-database-allchars" and
// "00-database-case-sensitive" entries control how headwords are normalized
// for searching.
package idx
