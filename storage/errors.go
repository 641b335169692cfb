// Copyright 2025 Poiesic Systems
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


package storage

import "errors"

var (
	// ErrConnectionFailed indicates that the store could not be reached.
	ErrConnectionFailed = errors.New("store connection failed")

	// ErrInsertFailed indicates that a document could not be written.
	ErrInsertFailed = errors.New("insert failed")

	// ErrQueryFailed indicates that a search could not be executed.
	ErrQueryFailed = errors.New("query failed")

	// ErrSchemaFailed indicates that the collection could not be created or dropped.
	ErrSchemaFailed = errors.New("schema setup failed")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrInvalidQuery indicates invalid query parameters.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)
