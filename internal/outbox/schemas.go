package outbox

const recordBrokenSchema = `{
  "type": "object",
  "title": "RecordBroken",
  "properties": {
    "user_id": {"type": "string"},
    "exercise_id": {"type": "string"},
    "record_type": {"type": "string"},
    "old_value": {"type": "number"},
    "new_value": {"type": "number"},
    "entry_id": {"type": "string"},
    "occurred_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "exercise_id", "record_type", "new_value", "entry_id", "occurred_at"],
  "additionalProperties": false
}`

const badgeAwardedSchema = `{
  "type": "object",
  "title": "BadgeAwarded",
  "properties": {
    "user_id": {"type": "string"},
    "badge_id": {"type": "string"},
    "snapshot": {"type": "object"},
    "awarded_at": {"type": "string", "format": "date-time"}
  },
  "required": ["user_id", "badge_id", "awarded_at"],
  "additionalProperties": false
}`
