// Package http exposes a Namespace over a small JSON API.
//
// Routes:
//   - GET    /health            liveness and disk summary
//   - GET    /fs/ls?path=       directory listing
//   - GET    /fs/cat?path=      file content
//   - POST   /fs/write          {path, content}
//   - POST   /fs/mkdir          {path}
//   - DELETE /fs?path=          remove a file or tree
//   - GET    /fs/search         name, regex, content, glob, tag, min, max, type, path
//   - GET    /fs/tags[?path=]   tags of a node, or every tag
//   - POST   /fs/tags           {path, tag}
//   - DELETE /fs/tags?path=&tag=
//   - GET    /disk              space and mount table
//   - POST   /disk/save         flush to the configured image
//   - GET    /metrics           Prometheus exposition
//   - GET    /metrics/json      operation and request totals
//
// The engine is single-threaded; Handlers serializes every call with a
// mutex.
package http
