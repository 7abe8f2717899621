package main

import (
	"os"

	"docqa/backend/internal/app"
)

// @title           DocQA API
// @version         1.0
// @description     Document question-answering chat backend. Exposes chat sessions with typed-out answer streaming, document management, and system statistics.
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
