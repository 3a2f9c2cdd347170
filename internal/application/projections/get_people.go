package projections

import (
	"context"
	"net/url"

	"followup/internal/adapters/storage/person"
	"followup/internal/application/listutil"
	"followup/internal/domain/contact"
	domainPerson "followup/internal/domain/person"
)

// PeopleSortKeys are the sort values accepted from ?sort=.
var PeopleSortKeys = []string{person.SortName, person.SortLastAttendance, person.SortNewest}

// PersonRow is one roster line on the admin's people list.
type PersonRow struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Phone              string `json:"phone"`
	Gender             string `json:"gender"`
	LastAttendanceDate string `json:"last_attendance_date,omitempty"`
	WhatsAppURL        string `json:"whatsapp_url"`
}

// GetPeopleResult carries one page of the roster.
type GetPeopleResult struct {
	People []PersonRow       `json:"people"`
	Page   listutil.PageInfo `json:"page"`
}

// ParsePeopleQuery maps URL query values onto a roster filter.
func ParsePeopleQuery(q url.Values) listutil.ListParams {
	return listutil.ParseListParams(q, PeopleSortKeys, []string{"gender"})
}

// QueryGetPeople lists the roster with search, gender filter, sort and paging.
// PRE: params came from ParsePeopleQuery
// POST: Returns at most PerPage rows and paging metadata for the full match
func QueryGetPeople(ctx context.Context, params listutil.ListParams, store PersonStore) (GetPeopleResult, error) {
	filter := person.ListFilter{
		Search: params.Search,
		Gender: params.Filters["gender"],
		Sort:   params.Sort,
	}
	if filter.Gender != "" && !domainPerson.IsValidGender(filter.Gender) {
		return GetPeopleResult{}, domainPerson.ErrInvalidGender
	}

	total, err := store.Count(ctx, filter)
	if err != nil {
		return GetPeopleResult{}, err
	}
	page := listutil.NewPageInfo(params.Page, params.PerPage, total)
	filter.Limit = page.PerPage
	filter.Offset = page.Offset()

	people, err := store.List(ctx, filter)
	if err != nil {
		return GetPeopleResult{}, err
	}

	rows := make([]PersonRow, 0, len(people))
	for _, p := range people {
		rows = append(rows, PersonRow{
			ID:                 p.ID,
			Name:               p.Name,
			Phone:              p.Phone,
			Gender:             p.Gender,
			LastAttendanceDate: p.LastAttendanceDate,
			WhatsAppURL:        contact.WhatsAppURL(p.Phone),
		})
	}
	return GetPeopleResult{People: rows, Page: page}, nil
}
