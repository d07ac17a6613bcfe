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

// Package server wraps http.Server into the ListenAndServe/Shutdown shape main uses
// for both the REST/SSE/websocket server and the LLM proxy server.
package server

import (
	"context"
	"net/http"
	"time"
)

// Server is a plain HTTP server with a name used only for logging.
type Server struct {
	Name string

	server *http.Server
}

// Config carries the listener settings common to both the API and proxy
// servers (spec.md §6 "api.addr" / "proxy.addr").
type Config struct {
	Addr                string
	ReadTimeoutSeconds  int
	WriteTimeoutSeconds int
	IdleTimeoutSeconds  int
	MaxHeaderBytes      int
}

// New creates a Server bound to cfg.Addr, serving handler. Zero-value
// timeout/header fields fall back to http.Server's own defaults.
func New(name string, cfg Config, handler http.Handler) *Server {
	return &Server{
		Name: name,
		server: &http.Server{
			Addr:           cfg.Addr,
			Handler:        handler,
			ReadTimeout:    time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
			WriteTimeout:   time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
			IdleTimeout:    time.Duration(cfg.IdleTimeoutSeconds) * time.Second,
			MaxHeaderBytes: cfg.MaxHeaderBytes,
		},
	}
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe blocks until the server is shut down or fails to start.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully drains in-flight requests before returning.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
