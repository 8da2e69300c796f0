package mysql

const upsertHotelSQL = `
INSERT INTO hotels
  (hotel_id, payload)
VALUES
  (?, ?)
ON DUPLICATE KEY UPDATE
  payload    = VALUES(payload),
  updated_at = CURRENT_TIMESTAMP
`

const getHotelSQL = `
SELECT hotel_id, payload, created_at, updated_at
FROM hotels
WHERE hotel_id = ?
`
