package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ofblood/website/admin/pkg/request"
	"github.com/ofblood/website/admin/pkg/response"
	commonErrors "github.com/ofblood/website/internal/errors"
)

type Show struct {
	ID        uuid.UUID
	Venue     string
	City      string
	State     string
	ShowDate  time.Time
	TicketURL string
	OnSale    bool
	SoldOut   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s Show) Response() response.Show {
	return response.Show{
		ID:        s.ID,
		Venue:     s.Venue,
		City:      s.City,
		State:     s.State,
		Date:      s.ShowDate,
		TicketURL: s.TicketURL,
		OnSale:    s.OnSale,
		SoldOut:   s.SoldOut,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

type ShowRepository struct {
	pool *pgxpool.Pool
}

func NewShowRepository(pool *pgxpool.Pool) ShowRepository {
	return ShowRepository{pool: pool}
}

const insertShow = `
INSERT INTO shows (venue, city, state, show_date, ticket_url, on_sale, sold_out)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, venue, city, state, show_date, ticket_url, on_sale, sold_out, created_at, updated_at
`

func (r ShowRepository) InsertShow(c context.Context, param request.Show) (Show, error) {
	row := r.pool.QueryRow(
		c,
		insertShow,
		param.Venue,
		param.City,
		param.State,
		param.Date,
		param.TicketURL,
		param.OnSale,
		param.SoldOut,
	)
	show, err := scanShow(row)
	if err != nil {
		return Show{}, fmt.Errorf("failed inserting show with error=%w", err)
	}
	return show, nil
}

const findShows = `
SELECT id, venue, city, state, show_date, ticket_url, on_sale, sold_out, created_at, updated_at
FROM shows
WHERE (NOT $1::boolean OR show_date >= now())
ORDER BY show_date ASC
`

// FindShows lists shows in date order, optionally only the upcoming ones.
func (r ShowRepository) FindShows(c context.Context, upcomingOnly bool) ([]Show, error) {
	rows, err := r.pool.Query(c, findShows, upcomingOnly)
	if err != nil {
		return nil, fmt.Errorf("failed finding shows with error=%w", err)
	}
	defer rows.Close()

	shows := []Show{}
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed scanning show with error=%w", err)
		}
		shows = append(shows, show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating shows with error=%w", err)
	}
	return shows, nil
}

const findShowById = `
SELECT id, venue, city, state, show_date, ticket_url, on_sale, sold_out, created_at, updated_at
FROM shows
WHERE id = $1
`

func (r ShowRepository) FindShowById(c context.Context, id uuid.UUID) (Show, error) {
	show, err := scanShow(r.pool.QueryRow(c, findShowById, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Show{}, commonErrors.ErrShowNotFound
		}
		return Show{}, fmt.Errorf("failed finding show id=%s with error=%w", id.String(), err)
	}
	return show, nil
}

const updateShow = `
UPDATE shows
SET venue = $2,
    city = $3,
    state = $4,
    show_date = $5,
    ticket_url = $6,
    on_sale = $7,
    sold_out = $8,
    updated_at = now()
WHERE id = $1
RETURNING id, venue, city, state, show_date, ticket_url, on_sale, sold_out, created_at, updated_at
`

func (r ShowRepository) UpdateShow(
	c context.Context,
	id uuid.UUID,
	param request.Show,
) (Show, error) {
	row := r.pool.QueryRow(
		c,
		updateShow,
		id,
		param.Venue,
		param.City,
		param.State,
		param.Date,
		param.TicketURL,
		param.OnSale,
		param.SoldOut,
	)
	show, err := scanShow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Show{}, commonErrors.ErrShowNotFound
		}
		return Show{}, fmt.Errorf("failed updating show id=%s with error=%w", id.String(), err)
	}
	return show, nil
}

const deleteShow = `DELETE FROM shows WHERE id = $1`

func (r ShowRepository) DeleteShow(c context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(c, deleteShow, id)
	if err != nil {
		return fmt.Errorf("failed deleting show id=%s with error=%w", id.String(), err)
	}
	if tag.RowsAffected() == 0 {
		return commonErrors.ErrShowNotFound
	}
	return nil
}

func scanShow(row pgx.Row) (Show, error) {
	show := Show{}
	err := row.Scan(
		&show.ID,
		&show.Venue,
		&show.City,
		&show.State,
		&show.ShowDate,
		&show.TicketURL,
		&show.OnSale,
		&show.SoldOut,
		&show.CreatedAt,
		&show.UpdatedAt,
	)
	return show, err
}
