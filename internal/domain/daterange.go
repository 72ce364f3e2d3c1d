package domain

import "time"

// DateRange is an inclusive calendar-day interval
type DateRange struct {
	start time.Time
	end   time.Time
}

// NewDateRange validates end >= start. Inputs are truncated to UTC calendar
// dates.
func NewDateRange(start, end time.Time) (DateRange, error) {
	startDate := truncateToDate(start)
	endDate := truncateToDate(end)
	if endDate.Before(startDate) {
		return DateRange{}, NewError(ErrorKindInvalidDateRange,
			"end date '%s' cannot be before start date '%s'",
			endDate.Format("2006-01-02"), startDate.Format("2006-01-02"))
	}
	return DateRange{start: startDate, end: endDate}, nil
}

// Start returns the first day of the range
func (dateRange DateRange) Start() time.Time {
	return dateRange.start
}

// End returns the last day of the range
func (dateRange DateRange) End() time.Time {
	return dateRange.end
}

// Days returns the inclusive day count
func (dateRange DateRange) Days() int {
	return int(dateRange.end.Sub(dateRange.start).Hours()/24) + 1
}

// Contains reports whether the date falls inside the range
func (dateRange DateRange) Contains(date time.Time) bool {
	day := truncateToDate(date)
	return !day.Before(dateRange.start) && !day.After(dateRange.end)
}

// EachDay walks the range day by day in ascending order, stopping early when
// yield returns false. The sequence is finite and restartable.
func (dateRange DateRange) EachDay(yield func(day time.Time) bool) {
	for day := dateRange.start; !day.After(dateRange.end); day = day.AddDate(0, 0, 1) {
		if !yield(day) {
			return
		}
	}
}

// String formats the range as "start..end"
func (dateRange DateRange) String() string {
	return dateRange.start.Format("2006-01-02") + ".." + dateRange.end.Format("2006-01-02")
}

// Pagination page-size limits
const (
	MinPageSize = 1
	MaxPageSize = 200
)

// Pagination is a validated page/pageSize pair. Invalid inputs fail
// construction rather than being clamped.
type Pagination struct {
	page     int
	pageSize int
}

// NewPagination validates page >= 1 and pageSize within [MinPageSize, MaxPageSize]
func NewPagination(page, pageSize int) (Pagination, error) {
	if page < 1 {
		return Pagination{}, NewError(ErrorKindInvalidPagination, "page must be >= 1, got %d", page)
	}
	if pageSize < MinPageSize || pageSize > MaxPageSize {
		return Pagination{}, NewError(ErrorKindInvalidPagination,
			"pageSize must be between %d and %d, got %d", MinPageSize, MaxPageSize, pageSize)
	}
	return Pagination{page: page, pageSize: pageSize}, nil
}

// Page returns the 1-based page number
func (pagination Pagination) Page() int {
	return pagination.page
}

// PageSize returns the page size
func (pagination Pagination) PageSize() int {
	return pagination.pageSize
}

// Skip returns the number of items preceding the page
func (pagination Pagination) Skip() int {
	return (pagination.page - 1) * pagination.pageSize
}

// Take returns the maximum number of items on the page
func (pagination Pagination) Take() int {
	return pagination.pageSize
}
