package ecs

// World holds the entities of one game and their components. A restart
// builds a new World, so entities are never destroyed individually.
type World struct {
	nextID EntityID
	stores map[ComponentType]map[EntityID]Component
}

// NewWorld creates an empty World.
func NewWorld() *World {
	return &World{
		nextID: 1,
		stores: make(map[ComponentType]map[EntityID]Component),
	}
}

// CreateEntity mints the next entity ID.
func (w *World) CreateEntity() EntityID {
	id := w.nextID
	w.nextID++
	return id
}

// Exists reports whether id was minted by this world.
func (w *World) Exists(id EntityID) bool {
	return id != NilEntity && id < w.nextID
}

// Len returns the number of entities.
func (w *World) Len() int {
	return int(w.nextID - 1)
}

// Add attaches c to id, replacing any component of the same type.
// Components are values: callers read, modify and Add back.
func (w *World) Add(id EntityID, c Component) {
	t := c.Type()
	store := w.stores[t]
	if store == nil {
		store = make(map[EntityID]Component)
		w.stores[t] = store
	}
	store[id] = c
}

// Get returns the component of type t attached to id, or nil.
func (w *World) Get(id EntityID, t ComponentType) Component {
	return w.stores[t][id]
}

// Has reports whether id carries a component of type t.
func (w *World) Has(id EntityID, t ComponentType) bool {
	_, ok := w.stores[t][id]
	return ok
}

// Fetch returns id's component of type T. The zero T and false are
// returned when it has none.
func Fetch[T Component](w *World, id EntityID) (T, bool) {
	var zero T
	c, ok := w.stores[zero.Type()][id].(T)
	return c, ok
}

// Query returns the entities carrying every listed type, in creation
// order. Proximity scans rely on that order to break ties.
func (w *World) Query(types ...ComponentType) []EntityID {
	if len(types) == 0 {
		return nil
	}
	stores := make([]map[EntityID]Component, len(types))
	for i, t := range types {
		stores[i] = w.stores[t]
		if len(stores[i]) == 0 {
			return nil
		}
	}
	var result []EntityID
	for id := EntityID(1); id < w.nextID; id++ {
		if carriesAll(stores, id) {
			result = append(result, id)
		}
	}
	return result
}

func carriesAll(stores []map[EntityID]Component, id EntityID) bool {
	for _, s := range stores {
		if _, ok := s[id]; !ok {
			return false
		}
	}
	return true
}
