// Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
//
// WSO2 LLC. licenses this file to you under the Apache License,
// Version 2.0 (the "License"); you may not use this file except
// in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package proxy

import (
	"bytes"
	"net/http"
)

// teeingResponseWriter relays every chunk to the client immediately while
// also accumulating it (up to ceiling bytes) for span completion, per
// spec.md §4.H.2: streaming responses are never buffered before forwarding.
type teeingResponseWriter struct {
	http.ResponseWriter
	accumulated *bytes.Buffer
	ceiling     int
	statusCode  int
}

func (w *teeingResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *teeingResponseWriter) Write(b []byte) (int, error) {
	if w.statusCode == 0 {
		w.statusCode = http.StatusOK
	}
	if w.accumulated.Len() < w.ceiling {
		remaining := w.ceiling - w.accumulated.Len()
		if remaining > len(b) {
			w.accumulated.Write(b)
		} else {
			w.accumulated.Write(b[:remaining])
		}
	}
	return w.ResponseWriter.Write(b)
}

// Flush propagates to the underlying writer so chunked/SSE bodies stream
// without buffering on the client side (spec.md §4.H.2).
func (w *teeingResponseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
