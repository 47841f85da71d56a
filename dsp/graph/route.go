package graph

// The routing entry points run on the audio side between blocks. They
// return bare sentinel errors so the failure path does not allocate.

// ProcessInputEvent routes a host event to the event source serving its
// bus. Note-on, note-off and data events reach the matching handler; other
// event types are accepted and ignored.
func (o *Orchestrator) ProcessInputEvent(ev Event) error {
	if ev.BusIndex < 0 || ev.BusIndex >= o.nEvent {
		return ErrInvalidReference
	}

	src, ok := o.modules[o.eventSources[ev.BusIndex]].(EventSource)
	if !ok {
		return ErrInvalidReference
	}

	switch ev.Type {
	case EventNoteOn:
		src.NoteOn(ev.Note)
	case EventNoteOff:
		src.NoteOff(ev.Note)
	case EventData:
		src.Data(ev.Data)
	}

	return nil
}

// ProcessInputAudio hands a host buffer to the audio source serving bus.
func (o *Orchestrator) ProcessInputAudio(buf AudioBuffer, bus int) error {
	if bus < 0 || bus >= o.nAudio {
		return ErrInvalidReference
	}

	src, ok := o.modules[o.audioSources[bus]].(AudioSource)
	if !ok {
		return ErrInvalidReference
	}

	src.SetBuffer(buf)

	return nil
}

// ParameterChanged delivers a host parameter change to the module input
// slot encoded in id (see ParameterID). The value takes effect for the
// whole next block; sampleOffset is accepted for API compatibility.
func (o *Orchestrator) ParameterChanged(id uint64, sampleOffset int, value float64) error {
	_ = sampleOffset

	mod, slot, ok := SplitParameterID(id)
	if !ok {
		return ErrInvalidReference
	}

	m, ok := o.Module(mod)
	if !ok {
		return ErrInvalidReference
	}

	if !m.base().setParameter(slot, value) {
		return ErrInvalidReference
	}

	return nil
}
