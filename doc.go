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

// Package dictd implements a library for reading DICT dictionaries, as used
// by the dictd server, in pure Go.
//
// DICT dictionaries consist of two files:
//  1. An .index file that contains the dictionary index. Each line holds a
//     headword and the offset and size of its definition in the .dict file.
//     Metadata about the dictionary is stored as entries whose headwords
//     start with "00-database-".
//  2. A .dict file that contains the definitions. The dict file can be
//     compressed using the dictzip format, in which case it has a .dict.dz
//     extension.
//
// More info on the dictionary format can be found in the dictd(8) and
// dictfmt(1) man pages.
package dictd
