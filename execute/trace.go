package execute

import (
	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
)

// DatasetID identifies the result set produced by one engine run.
type DatasetID = uuid.UUID

// StartSpan opens a tracing span for one engine run and returns it
// along with the dataset id tagged on the span. Callers must finish the
// span.
func StartSpan(op string) (opentracing.Span, DatasetID) {
	id := uuid.New()
	span := opentracing.StartSpan("keel.execute." + op)
	span.SetTag("dataset_id", id.String())
	return span, id
}
