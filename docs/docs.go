// Package docs содержит спецификацию OpenAPI сервиса лицензирования.
// Файл swagger.json поддерживается вручную и раздаётся HTTP-сервером
// по адресу /docs/swagger.json для Swagger UI.
package docs

import _ "embed"

//go:embed swagger.json
var SwaggerJSON []byte
