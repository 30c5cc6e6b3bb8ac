package ports

import "context"

// ExportRenderer turns an ordered record view sequence into a downloadable
// artifact. The artifact's internal format is the renderer's business.
type ExportRenderer interface {
	Render(ctx context.Context, records []RecordView) (filename string, content []byte, err error)
}
