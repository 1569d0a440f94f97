package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           viewportd API
// @version         1.0
// @description     HTTP API for viewport pooling, lazy activation, and progressive image loading.
//
// @contact.name   viewportd maintainers
// @contact.url    https://github.com/your-org/viewportd
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
