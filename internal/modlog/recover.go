package modlog

import "github.com/Iron-Ham/foldlog/internal/errors"

// RecoverFatal converts a panic raised by a failed assertion into an error
// stored in *errp. Any other panic is re-raised. It must be deferred directly:
//
//	func (q *Queue) Drain() (err error) {
//		defer modlog.RecoverFatal(&err)
//		q.log.AssertThat(q.open, "drain on closed queue")
//		...
//	}
func RecoverFatal(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	ae, ok := r.(*errors.AssertionError)
	if !ok {
		panic(r)
	}
	if errp != nil {
		*errp = ae
	}
}
